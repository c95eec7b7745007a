package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// feltMilesPerMagnitude scales magnitude into the felt radius in miles.
const feltMilesPerMagnitude = 100

// ErrMalformedPlace reports a place description without a ", " separator.
var ErrMalformedPlace = errors.New("place has no city/region separator")

// relativePrefixRe matches the "<distance> <compass> of " lead-in of a USGS
// place description. Greedy, so it strips through the last " of ".
var relativePrefixRe = regexp.MustCompile(`^.* of `)

// IsEarthquake reports whether the record's type column is exactly "earthquake".
func IsEarthquake(r RawRecord) bool {
	return r.Field(ColType) == EventTypeEarthquake
}

// DateFromTimestamp keeps the calendar-date portion of an ISO-8601 timestamp,
// e.g. "2017-02-01T04:35:11.290Z" -> "2017-02-01". Values without a "T" are
// returned unchanged.
func DateFromTimestamp(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}

// NormalizePlace reduces "25km NE of Soledad, California" to
// "Soledad, California". Only the first two ", "-separated parts are kept, so
// "10km N of Ensenada, B.C., MX" becomes "Ensenada, B.C.".
func NormalizePlace(description string) (string, error) {
	city, rest, ok := strings.Cut(description, ", ")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMalformedPlace, description)
	}
	region, _, _ := strings.Cut(rest, ", ")
	city = relativePrefixRe.ReplaceAllString(city, "")
	return city + ", " + region, nil
}

// ParseFloatOrZero parses a string as float64, returning 0 on failure.
// NaN and infinities count as failures.
func ParseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FeltThreshold is the farthest distance, in whole miles, at which an event of
// the given magnitude is considered felt. Results beyond the int range are
// clamped.
func FeltThreshold(magnitude float64) int {
	t := math.Round(magnitude * feltMilesPerMagnitude)
	switch {
	case math.IsNaN(t):
		return 0
	case t >= math.MaxInt:
		return math.MaxInt
	case t <= math.MinInt:
		return math.MinInt
	}
	return int(t)
}

// IsFelt applies the felt heuristic: distance <= round(magnitude * 100).
func IsFelt(distanceMiles int, magnitude float64) bool {
	return distanceMiles <= FeltThreshold(magnitude)
}

// generateID produces a deterministic ID from the event's key fields.
func generateID(timeStr, place, magnitude string) string {
	input := fmt.Sprintf("%s|%s|%s", timeStr, place, magnitude)
	hash := sha256.Sum256([]byte(input))
	return "quake-" + hex.EncodeToString(hash[:8])
}
