// Package pipeline loads the earthquake catalog from its source, keeps it
// fresh, and hands compiled events to an optional downstream publisher.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/felt-quakes/internal/catalog"
	"github.com/couchcryptid/felt-quakes/internal/domain"
	"github.com/couchcryptid/felt-quakes/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Compiler rebuilds a dataset from a source.
type Compiler interface {
	CompileFrom(ctx context.Context, src catalog.Source) (catalog.CompileResult, error)
}

// Publisher writes compiled events to a downstream destination.
type Publisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}

// Loader orchestrates the read-compile-publish cycle.
type Loader struct {
	source    catalog.Source
	compiler  Compiler
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	ready     atomic.Bool
}

// New creates a Loader. A nil publisher disables publishing; a zero interval
// loads once and stops.
func New(src catalog.Source, c Compiler, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Loader {
	return &Loader{
		source:    src,
		compiler:  c,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// CheckReadiness returns nil once a catalog has been compiled successfully.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("earthquake catalog has not been loaded yet")
	}
	return nil
}

// Run loads the catalog, retrying with exponential backoff while the source
// is unreadable. With a reload interval set it keeps reloading until ctx is
// cancelled; otherwise it returns after the first successful load.
func (l *Loader) Run(ctx context.Context) error {
	l.logger.Info("loader started", "reload_interval", l.interval)
	l.metrics.LoaderRunning.Set(1)
	defer l.metrics.LoaderRunning.Set(0)

	backoff := initialBackoff
	for {
		err := l.LoadOnce(ctx)
		if ctx.Err() != nil {
			l.logger.Info("loader stopping", "reason", ctx.Err())
			return nil
		}

		wait := l.interval
		if err != nil {
			wait = backoff
			backoff = retry.NextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
			if l.interval == 0 {
				return nil
			}
		}

		if !retry.SleepWithContext(ctx, wait) {
			l.logger.Info("loader stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// LoadOnce runs a single read-compile-publish cycle. A source failure leaves
// the previous catalog in place and is returned. Publish failures are logged
// and counted but do not fail the load.
func (l *Loader) LoadOnce(ctx context.Context) error {
	start := time.Now()

	res, err := l.compiler.CompileFrom(ctx, l.source)
	if err != nil {
		l.logger.Error("compile failed, keeping previous catalog", "error", err)
		l.metrics.CompileFailures.Inc()
		return err
	}

	l.record(res)
	l.metrics.CompileDuration.Observe(time.Since(start).Seconds())
	l.ready.Store(true)

	l.logger.Info("catalog compiled",
		"records", res.Stats.Records,
		"events", res.Stats.Compiled,
		"not_earthquake", res.Stats.NotEarthquake,
		"not_felt", res.Stats.NotFelt,
		"malformed", res.Stats.Malformed,
	)

	l.publish(ctx, res.Events)
	return nil
}

// record logs per-record warnings and updates compile metrics.
func (l *Loader) record(res catalog.CompileResult) {
	for _, w := range res.Warnings {
		l.logger.Warn("skipping malformed record",
			"index", w.Index,
			"field", w.Field,
			"value", w.Value,
			"error", w.Err,
		)
	}

	l.metrics.RecordsRead.Add(float64(res.Stats.Records))
	l.metrics.EventsCompiled.Add(float64(res.Stats.Compiled))
	l.metrics.RecordsSkipped.WithLabelValues("not_earthquake").Add(float64(res.Stats.NotEarthquake))
	l.metrics.RecordsSkipped.WithLabelValues("not_felt").Add(float64(res.Stats.NotFelt))
	l.metrics.RecordsSkipped.WithLabelValues("malformed").Add(float64(res.Stats.Malformed))
	l.metrics.CatalogSize.Set(float64(res.Stats.Compiled))
}

func (l *Loader) publish(ctx context.Context, events []domain.Event) {
	if l.publisher == nil || len(events) == 0 {
		return
	}
	if err := l.publisher.Publish(ctx, events); err != nil {
		l.logger.Error("publish failed", "error", err, "events", len(events))
		l.metrics.PublishErrors.Inc()
		return
	}
	l.metrics.EventsPublished.Add(float64(len(events)))
}
