// Package catalog compiles raw feed records into the set of earthquakes felt
// at a reference point and answers date-window queries over it.
package catalog

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/couchcryptid/felt-quakes/internal/domain"
	"github.com/couchcryptid/felt-quakes/internal/geo"
	"github.com/jonboulle/clockwork"
)

// MaxResults caps the number of events a query returns.
const MaxResults = 10

// Source supplies raw records, header already removed.
type Source interface {
	Records(ctx context.Context) ([]domain.RawRecord, error)
}

// CompileStats counts what happened to each input record.
type CompileStats struct {
	Records       int
	Compiled      int
	NotEarthquake int
	NotFelt       int
	Malformed     int
}

// CompileResult is the outcome of a compile: the new dataset plus any
// per-record problems that caused records to be skipped.
type CompileResult struct {
	Events   []domain.Event
	Warnings []*RecordFormatError
	Stats    CompileStats
}

// Catalog holds the compiled events, sorted ascending by (date, time).
// Queries may run concurrently with each other; Compile is exclusive.
type Catalog struct {
	reference geo.Point
	clock     clockwork.Clock

	mu     sync.RWMutex
	events []domain.Event
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the time source used for default query bounds.
func WithClock(c clockwork.Clock) Option {
	return func(cat *Catalog) {
		if c != nil {
			cat.clock = c
		}
	}
}

// New creates an empty catalog measuring distances from reference.
func New(reference geo.Point, opts ...Option) *Catalog {
	c := &Catalog{
		reference: reference,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reference returns the point distances are measured from.
func (c *Catalog) Reference() geo.Point { return c.reference }

// Len returns the number of compiled events.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Events returns a copy of the compiled dataset.
func (c *Catalog) Events() []domain.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.events)
}

// CompileFrom reads records from src and compiles them. If the source fails,
// a *SourceReadError is returned and the current dataset is kept.
func (c *Catalog) CompileFrom(ctx context.Context, src Source) (CompileResult, error) {
	records, err := src.Records(ctx)
	if err != nil {
		return CompileResult{}, &SourceReadError{Err: err}
	}
	return c.Compile(records), nil
}

// Compile filters, normalizes, and sorts records, replacing the current
// dataset with the result. The returned events are the caller's to modify. Records that cannot be compiled are skipped and
// reported in the result's warnings.
func (c *Catalog) Compile(records []domain.RawRecord) CompileResult {
	result := CompileResult{
		Events: make([]domain.Event, 0, len(records)),
		Stats:  CompileStats{Records: len(records)},
	}

	for i, r := range records {
		event, err := c.compileRecord(i, r)
		switch {
		case err == nil:
			result.Events = append(result.Events, event)
		case errors.Is(err, errNotEarthquake):
			result.Stats.NotEarthquake++
		case errors.Is(err, errNotFelt):
			result.Stats.NotFelt++
		default:
			var rfe *RecordFormatError
			if errors.As(err, &rfe) {
				result.Warnings = append(result.Warnings, rfe)
			}
			result.Stats.Malformed++
		}
	}

	slices.SortStableFunc(result.Events, compareEvents)
	result.Stats.Compiled = len(result.Events)

	c.mu.Lock()
	c.events = slices.Clone(result.Events)
	c.mu.Unlock()

	return result
}

var (
	errNotEarthquake = errors.New("not an earthquake")
	errNotFelt       = errors.New("too far to be felt")
)

func (c *Catalog) compileRecord(index int, r domain.RawRecord) (domain.Event, error) {
	if !domain.IsEarthquake(r) {
		return domain.Event{}, errNotEarthquake
	}

	timestamp := r.Field(domain.ColTime)

	place, err := domain.NormalizePlace(r.Field(domain.ColPlace))
	if err != nil {
		return domain.Event{}, &RecordFormatError{
			Index: index,
			Field: domain.ColPlace,
			Value: r.Field(domain.ColPlace),
			Err:   err,
		}
	}

	epicenter := geo.Point{
		Lat: domain.ParseFloatOrZero(r.Field(domain.ColLatitude)),
		Lon: domain.ParseFloatOrZero(r.Field(domain.ColLongitude)),
	}
	distance := int(math.Round(geo.Distance(c.reference, epicenter, geo.Miles)))

	magnitude := r.Field(domain.ColMagnitude)
	if !domain.IsFelt(distance, domain.ParseFloatOrZero(magnitude)) {
		return domain.Event{}, errNotFelt
	}

	return domain.Event{
		Date:      domain.DateFromTimestamp(timestamp),
		Time:      timestamp,
		Place:     place,
		Magnitude: magnitude,
		Distance:  distance,
	}, nil
}

// Query returns up to MaxResults events whose date lies in [start, end],
// inclusive. An empty end defaults to today and an empty start to 30 days
// before today. Both bounds must be valid YYYY-MM-DD dates.
func (c *Catalog) Query(start, end string) ([]domain.Event, error) {
	defStart, defEnd := defaultWindow(c.clock.Now())
	if end == "" {
		end = defEnd
	}
	if start == "" {
		start = defStart
	}

	var invalid []DateBound
	if !ValidDate(start) {
		invalid = append(invalid, DateBound{Name: "start_date", Value: start})
	}
	if !ValidDate(end) {
		invalid = append(invalid, DateBound{Name: "end_date", Value: end})
	}
	if len(invalid) > 0 {
		return nil, &InvalidDateFormatError{Bounds: invalid}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Event, 0, MaxResults)
	for _, e := range c.events {
		if e.Date < start {
			continue
		}
		if e.Date > end || len(out) == MaxResults {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func compareEvents(a, b domain.Event) int {
	return cmp.Or(
		cmp.Compare(a.Date, b.Date),
		cmp.Compare(a.Time, b.Time),
	)
}
