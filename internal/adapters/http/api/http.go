// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/lodestar/internal/domain/model"
	"github.com/okian/lodestar/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest runs the pipeline for one telemetry batch.
	Ingest(ctx context.Context, batch model.Batch) (model.Summary, error)

	// Ping reports storage reachability for the health probe.
	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	telemetryHandler *TelemetryHandler

	apiToken     string
	maxBodyBytes int64
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAPIToken sets the bearer token required on the telemetry route.
// An empty token leaves the route unguarded (useful in tests only).
func WithAPIToken(token string) ServerOption {
	return func(s *Server) {
		s.apiToken = token
	}
}

// WithMaxBodyBytes caps the telemetry request body size.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		maxBodyBytes:  1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.telemetryHandler = NewTelemetryHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to mux. The health probe and metrics
// exposition stay public; the telemetry route sits behind the auth gate.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/telemetry",
		RequestIDMiddleware(
			MetricsMiddleware(
				BearerAuth(s.apiToken, s.telemetryHandler.HandlePostTelemetry),
				"telemetry",
			),
		),
	)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
