package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/felt-quakes/internal/catalog"
	"github.com/couchcryptid/felt-quakes/internal/domain"
	"github.com/couchcryptid/felt-quakes/internal/geo"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var losAngeles = geo.Point{Lat: 34.0522, Lon: -118.2437}

// Coordinates with known rounded distances from Los Angeles.
const (
	nearLat = "35.0" // 65 miles due north
	nearLon = "-118.2437"
	farLat  = "40.7128" // New York, 2444 miles
	farLon  = "-74.0060"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2017, time.February, 28, 12, 0, 0, 0, time.UTC))
	return catalog.New(losAngeles, catalog.WithClock(clock))
}

// record builds a 22-column USGS feed row.
func record(ts, lat, lon, mag, place, typ string) domain.RawRecord {
	r := make(domain.RawRecord, 22)
	r[domain.ColTime] = ts
	r[domain.ColLatitude] = lat
	r[domain.ColLongitude] = lon
	r[domain.ColMagnitude] = mag
	r[domain.ColPlace] = place
	r[domain.ColType] = typ
	return r
}

func quake(ts, mag string) domain.RawRecord {
	return record(ts, nearLat, nearLon, mag, "25km NE of Soledad, California", domain.EventTypeEarthquake)
}

type stubSource struct {
	records []domain.RawRecord
	err     error
}

func (s *stubSource) Records(_ context.Context) ([]domain.RawRecord, error) {
	return s.records, s.err
}

func TestCompile_NormalizesEvent(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{quake("2017-02-01T04:35:11.290Z", "2.3")})

	require.Len(t, res.Events, 1)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, domain.Event{
		Date:      "2017-02-01",
		Time:      "2017-02-01T04:35:11.290Z",
		Place:     "Soledad, California",
		Magnitude: "2.3",
		Distance:  65,
	}, res.Events[0])
	assert.Equal(t, 1, c.Len())
}

func TestCompile_FeltHeuristicInvariant(t *testing.T) {
	c := newTestCatalog(t)
	records := []domain.RawRecord{
		quake("2017-02-01T00:00:00.000Z", "0.6"),  // threshold 60 < 65
		quake("2017-02-01T01:00:00.000Z", "0.65"), // threshold 65 == 65
		quake("2017-02-01T02:00:00.000Z", "1.0"),
		record("2017-02-01T03:00:00.000Z", farLat, farLon, "9.0", "5km N of Brooklyn, New York", "earthquake"),
		record("2017-02-01T04:00:00.000Z", farLat, farLon, "24.5", "5km N of Brooklyn, New York", "earthquake"),
		record("2017-02-01T05:00:00.000Z", "34.0522", "-118.2437", "0.0", "1km S of Los Angeles, CA", "earthquake"),
	}

	res := c.Compile(records)

	require.Len(t, res.Events, 4)
	for _, e := range c.Events() {
		assert.LessOrEqual(t, e.Distance, domain.FeltThreshold(e.MagnitudeValue()), e.Time)
	}
	assert.Equal(t, 2, res.Stats.NotFelt)
	assert.Equal(t, 6, res.Stats.Records)
	assert.Equal(t, 4, res.Stats.Compiled)
}

func TestCompile_NoEarthquakes(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		record("2017-02-01T00:00:00.000Z", nearLat, nearLon, "3.0", "2km S of Fontana, CA", "quarry blast"),
		record("2017-02-02T00:00:00.000Z", nearLat, nearLon, "3.0", "2km S of Fontana, CA", "explosion"),
		record("2017-02-03T00:00:00.000Z", nearLat, nearLon, "3.0", "2km S of Fontana, CA", "Earthquake"),
	})

	assert.Empty(t, res.Events)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, res.Stats.NotEarthquake)
}

func TestCompile_AllTooFar(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		record("2017-02-01T00:00:00.000Z", farLat, farLon, "2.3", "5km N of Brooklyn, New York", "earthquake"),
		record("2017-02-02T00:00:00.000Z", farLat, farLon, "4.1", "5km N of Brooklyn, New York", "earthquake"),
	})

	assert.Empty(t, res.Events)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, res.Stats.NotFelt)
}

func TestCompile_MissingFieldsCoerceToZero(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		record("2017-02-01T00:00:00.000Z", nearLat, nearLon, "", "2km S of Fontana, CA", "earthquake"),
		record("2017-02-02T00:00:00.000Z", "", "", "5.0", "2km S of Fontana, CA", "earthquake"),
		record("2017-02-03T00:00:00.000Z", "34.0522", "-118.2437", "n/a", "1km S of Los Angeles, CA", "earthquake"),
	})

	// Only the event at the reference point survives a zero threshold.
	require.Len(t, res.Events, 1)
	assert.Equal(t, 0, res.Events[0].Distance)
	assert.Equal(t, "n/a", res.Events[0].Magnitude)
	assert.Empty(t, res.Warnings)
}

func TestCompile_NonFiniteNumbersCoerceToZero(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, mag string
		wantEvents    int
	}{
		{"NaN latitude", "NaN", "-118.2437", "2.0", 0},
		{"infinite longitude", "34.0", "Inf", "2.0", 0},
		{"negative infinity latitude", "-Infinity", "-118.2437", "2.0", 0},
		{"NaN magnitude at reference", "34.0522", "-118.2437", "NaN", 1},
		{"huge magnitude", "0", "0", "1e30", 1},
		{"overflowing magnitude", nearLat, nearLon, "1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog(t)
			res := c.Compile([]domain.RawRecord{
				record("2017-02-01T00:00:00.000Z", tt.lat, tt.lon, tt.mag, "2km S of Fontana, CA", "earthquake"),
			})

			require.Len(t, res.Events, tt.wantEvents)
			for _, e := range res.Events {
				assert.GreaterOrEqual(t, e.Distance, 0)
			}
		})
	}
}

func TestCompile_SortsByDateThenTime(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		quake("2017-02-03T00:00:00.000Z", "1.0"),
		quake("2017-02-01T10:00:00.000Z", "2.4"),
		quake("2017-02-01T09:00:00.000Z", "2.3"),
		quake("2017-01-31T23:59:59.999Z", "1.0"),
	})

	times := make([]string, len(res.Events))
	for i, e := range res.Events {
		times[i] = e.Time
	}
	want := []string{
		"2017-01-31T23:59:59.999Z",
		"2017-02-01T09:00:00.000Z",
		"2017-02-01T10:00:00.000Z",
		"2017-02-03T00:00:00.000Z",
	}
	if diff := cmp.Diff(want, times); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_SameDateOrdersByTimeNotMagnitude(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		quake("2017-02-01T09:00:00.000Z", "2.3"),
		quake("2017-02-01T10:00:00.000Z", "2.4"),
	})

	require.Len(t, res.Events, 2)
	assert.Equal(t, "2.3", res.Events[0].Magnitude)
	assert.Equal(t, "2.4", res.Events[1].Magnitude)

	res = c.Compile([]domain.RawRecord{
		quake("2017-02-01T09:00:00.000Z", "2.4"),
		quake("2017-02-01T10:00:00.000Z", "2.3"),
	})
	require.Len(t, res.Events, 2)
	assert.Equal(t, "2.4", res.Events[0].Magnitude)
	assert.Equal(t, "2.3", res.Events[1].Magnitude)
}

func TestCompile_MalformedPlaceIsSkippedWithWarning(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		quake("2017-02-01T00:00:00.000Z", "2.0"),
		record("2017-02-02T00:00:00.000Z", nearLat, nearLon, "2.0", "Central California", "earthquake"),
		quake("2017-02-03T00:00:00.000Z", "2.0"),
	})

	assert.Len(t, res.Events, 2)
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, 1, w.Index)
	assert.Equal(t, domain.ColPlace, w.Field)
	assert.Equal(t, "Central California", w.Value)
	assert.ErrorIs(t, w, domain.ErrMalformedPlace)
	assert.Equal(t, 1, res.Stats.Malformed)
}

func TestCompile_ShortRecordIsNotAnEarthquake(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{{"2017-02-01T00:00:00.000Z", nearLat, nearLon}})
	assert.Empty(t, res.Events)
	assert.Equal(t, 1, res.Stats.NotEarthquake)
}

func TestCompile_ReplacesDataset(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{quake("2017-02-01T00:00:00.000Z", "2.0"), quake("2017-02-02T00:00:00.000Z", "2.0")})
	require.Equal(t, 2, c.Len())

	c.Compile([]domain.RawRecord{quake("2017-02-05T00:00:00.000Z", "2.0")})
	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "2017-02-05", events[0].Date)
}

func TestCompileFrom_SourceFailureKeepsDataset(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.CompileFrom(context.Background(), &stubSource{records: []domain.RawRecord{quake("2017-02-01T00:00:00.000Z", "2.0")}})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	cause := errors.New("open all_month.csv: no such file or directory")
	_, err = c.CompileFrom(context.Background(), &stubSource{err: cause})
	require.Error(t, err)

	var sre *catalog.SourceReadError
	require.ErrorAs(t, err, &sre)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, c.Len())
}

func TestCompileFrom_EmptyCatalogStaysEmptyOnFailure(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.CompileFrom(context.Background(), &stubSource{err: errors.New("boom")})
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCompile_ResultEventsDoNotAliasCatalog(t *testing.T) {
	c := newTestCatalog(t)
	res := c.Compile([]domain.RawRecord{
		quake("2017-02-01T00:00:00.000Z", "1.0"),
		quake("2017-02-02T00:00:00.000Z", "1.0"),
	})

	slices.Reverse(res.Events)
	res.Events[0].Place = "changed"

	got, err := c.Query("2017-02-01", "2017-02-28")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2017-02-01", got[0].Date)
	assert.Equal(t, "2017-02-02", got[1].Date)
	assert.Equal(t, "Soledad, California", got[1].Place)
}

func TestEvents_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{quake("2017-02-01T00:00:00.000Z", "2.0")})

	events := c.Events()
	events[0].Place = "mutated"
	assert.Equal(t, "Soledad, California", c.Events()[0].Place)
}

func TestQuery_DefaultWindowCapsAtTen(t *testing.T) {
	c := newTestCatalog(t)

	records := make([]domain.RawRecord, 0, 11)
	for i := 1; i <= 10; i++ {
		records = append(records, quake(fmt.Sprintf("2017-02-20T%02d:00:00.000Z", i), "2.0"))
	}
	records = append(records, quake("2017-02-10T12:00:00.000Z", "2.0"))
	c.Compile(records)
	require.Equal(t, 11, c.Len())

	got, err := c.Query("", "")
	require.NoError(t, err)
	require.Len(t, got, catalog.MaxResults)

	want := c.Events()[:catalog.MaxResults]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2017-02-10", got[0].Date)
	assert.Equal(t, "2017-02-20T09:00:00.000Z", got[9].Time)
}

func TestQuery_DefaultWindowBounds(t *testing.T) {
	c := newTestCatalog(t) // today is 2017-02-28, window starts 2017-01-29
	c.Compile([]domain.RawRecord{
		quake("2017-01-28T23:59:59.000Z", "2.0"),
		quake("2017-01-29T00:00:00.000Z", "2.0"),
		quake("2017-02-28T23:00:00.000Z", "2.0"),
		quake("2017-03-01T00:00:00.000Z", "2.0"),
	})

	got, err := c.Query("", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2017-01-29", got[0].Date)
	assert.Equal(t, "2017-02-28", got[1].Date)
}

func TestQuery_ExplicitRangeIsInclusive(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{
		quake("2017-01-01T12:00:00.000Z", "2.0"),
		quake("2017-02-01T00:00:00.000Z", "2.0"),
		quake("2017-02-14T08:00:00.000Z", "2.0"),
		quake("2017-02-28T23:59:59.999Z", "2.0"),
		quake("2017-03-01T00:00:00.000Z", "2.0"),
	})

	got, err := c.Query("2017-02-01", "2017-02-28")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, e := range got {
		assert.GreaterOrEqual(t, e.Date, "2017-02-01")
		assert.LessOrEqual(t, e.Date, "2017-02-28")
	}
}

func TestQuery_OnlyStartGiven(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{
		quake("2016-12-31T00:00:00.000Z", "2.0"),
		quake("2017-01-01T00:00:00.000Z", "2.0"),
		quake("2017-03-01T00:00:00.000Z", "2.0"),
	})

	got, err := c.Query("2017-01-01", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2017-01-01", got[0].Date)
}

func TestQuery_StartAfterEndIsEmpty(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{quake("2017-02-10T00:00:00.000Z", "2.0")})

	got, err := c.Query("2017-02-20", "2017-02-01")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_InvalidDates(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		invalid []string
	}{
		{"wrong separator", "2017/02/01", "", []string{"start_date"}},
		{"two digit year", "17-02-01", "2017-02-28", []string{"start_date"}},
		{"not a calendar date", "2017-02-01", "2017-02-30", []string{"end_date"}},
		{"unpadded month", "2017-2-01", "2017-02-28", []string{"start_date"}},
		{"extra component", "2017-02-01-01", "2017-02-28", []string{"start_date"}},
		{"both bad", "yesterday", "2017.02.28", []string{"start_date", "end_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog(t)
			c.Compile([]domain.RawRecord{quake("2017-02-10T00:00:00.000Z", "2.0")})

			got, err := c.Query(tt.start, tt.end)
			require.Error(t, err)
			assert.Nil(t, got)

			var ide *catalog.InvalidDateFormatError
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, tt.invalid, ide.Names())
			assert.Contains(t, err.Error(), "YYYY-MM-DD")
		})
	}
}

func TestQuery_Idempotent(t *testing.T) {
	c := newTestCatalog(t)
	c.Compile([]domain.RawRecord{
		quake("2017-02-02T00:00:00.000Z", "2.0"),
		quake("2017-02-01T00:00:00.000Z", "2.0"),
	})

	first, err := c.Query("2017-02-01", "2017-02-28")
	require.NoError(t, err)
	second, err := c.Query("2017-02-01", "2017-02-28")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated query differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, 2, c.Len())
}

func TestQuery_EmptyCatalog(t *testing.T) {
	c := newTestCatalog(t)
	got, err := c.Query("", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_ConcurrentWithCompile(t *testing.T) {
	c := newTestCatalog(t)
	records := []domain.RawRecord{
		quake("2017-02-01T00:00:00.000Z", "2.0"),
		quake("2017-02-02T00:00:00.000Z", "2.0"),
	}
	c.Compile(records)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, err := c.Query("2017-02-01", "2017-02-28")
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
		go func() {
			defer wg.Done()
			c.Compile(records)
		}()
	}
	wg.Wait()
}

func TestValidDate(t *testing.T) {
	assert.True(t, catalog.ValidDate("2017-02-01"))
	assert.True(t, catalog.ValidDate("2016-02-29"))
	assert.False(t, catalog.ValidDate("2017-02-29"))
	assert.False(t, catalog.ValidDate("2017/02/01"))
	assert.False(t, catalog.ValidDate(""))
	assert.False(t, catalog.ValidDate("02-01-2017"))
}
