package domain

// Column positions in a raw feed record.
const (
	ColTime      = 0
	ColLatitude  = 1
	ColLongitude = 2
	ColMagnitude = 4
	ColPlace     = 13
	ColType      = 14
)

// EventTypeEarthquake is the only classification retained by the catalog.
const EventTypeEarthquake = "earthquake"

// RawRecord is one row of the feed as read from the source, header excluded.
type RawRecord []string

// Field returns the value at column i, or "" when the row is too short.
func (r RawRecord) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Event is an earthquake that passed classification and the felt heuristic.
type Event struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Place     string `json:"place"`
	Magnitude string `json:"magnitude"`
	Distance  int    `json:"distance"`
}

// MagnitudeValue returns the magnitude as a number, 0 if it does not parse.
func (e Event) MagnitudeValue() float64 {
	return ParseFloatOrZero(e.Magnitude)
}

// ID returns a deterministic identifier for the event.
func (e Event) ID() string {
	return generateID(e.Time, e.Place, e.Magnitude)
}
