package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "felt_quakes"

// Metrics holds the Prometheus counters, histograms, and gauges for catalog
// loading and querying.
type Metrics struct {
	RecordsRead     prometheus.Counter
	EventsCompiled  prometheus.Counter
	RecordsSkipped  *prometheus.CounterVec // labels: reason={not_earthquake,not_felt,malformed}
	CompileFailures prometheus.Counter
	CompileDuration prometheus.Histogram
	CatalogSize     prometheus.Gauge
	LoaderRunning   prometheus.Gauge

	Queries *prometheus.CounterVec // labels: outcome={ok,invalid_date}

	// Kafka publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsRead,
		m.EventsCompiled,
		m.RecordsSkipped,
		m.CompileFailures,
		m.CompileDuration,
		m.CatalogSize,
		m.LoaderRunning,
		m.Queries,
		m.EventsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Total raw records read from the source.",
		}),
		EventsCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_compiled_total",
			Help:      "Total records that passed classification and the felt heuristic.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records dropped during compilation by reason.",
		}, []string{"reason"}),
		CompileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_failures_total",
			Help:      "Compilations abandoned because the source could not be read.",
		}),
		CompileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Duration of a complete read-and-compile cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_events",
			Help:      "Number of events in the current catalog.",
		}),
		LoaderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loader_running",
			Help:      "1 when the loader is active, 0 when shut down.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Catalog queries by outcome.",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total compiled events written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
	}
}
