package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/felt-quakes/internal/catalog"
	"github.com/couchcryptid/felt-quakes/internal/domain"
	"github.com/couchcryptid/felt-quakes/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Querier answers date-window queries over the compiled catalog.
type Querier interface {
	Query(start, end string) ([]domain.Event, error)
}

// Server exposes the earthquake query API plus health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	querier    Querier
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /earthquakes, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, q Querier, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		querier: q,
		metrics: metrics,
		logger:  logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/earthquakes", s.handleEarthquakes)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type queryResponse struct {
	Count  int            `json:"count"`
	Events []domain.Event `json:"events"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Invalid []string `json:"invalid,omitempty"`
}

// handleEarthquakes serves GET /earthquakes?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
// Missing or empty parameters fall back to the catalog's default window.
func (s *Server) handleEarthquakes(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	events, err := s.querier.Query(start, end)
	if err != nil {
		var ide *catalog.InvalidDateFormatError
		if errors.As(err, &ide) {
			s.metrics.Queries.WithLabelValues("invalid_date").Inc()
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Invalid: ide.Names()})
			return
		}
		s.logger.Error("query failed", "error", err, "start_date", start, "end_date", end)
		s.metrics.Queries.WithLabelValues("error").Inc()
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "query failed"})
		return
	}

	s.metrics.Queries.WithLabelValues("ok").Inc()
	sharedobs.WriteJSON(w, http.StatusOK, queryResponse{Count: len(events), Events: events})
}
