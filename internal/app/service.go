// Package app provides the ingestion orchestrator that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	storage "github.com/okian/lodestar/internal/adapters/storage"
	registry "github.com/okian/lodestar/internal/domain/registry"
	"github.com/okian/lodestar/internal/domain/model"
	signal "github.com/okian/lodestar/internal/domain/signal"
	"github.com/okian/lodestar/pkg/logger"
	"github.com/okian/lodestar/pkg/metrics"
)

// Service coordinates one ingestion request end to end: vessel
// validation, classification of every reading, routing to the raw and
// filtered sinks, and the per-request metrics row. The signal registry
// is loaded once in Start and shared read-only across requests.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    storage.Store
	registry *registry.Registry

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence gateway. Required before Start.
func WithStore(store storage.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the signal registry from the store and marks the service
// ready. The registry never reloads; a restart picks up changes.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ingestion service...")

	kinds, err := s.store.SignalKinds(ctx)
	if err != nil {
		return fmt.Errorf("load signal registry: %w", err)
	}
	s.registry = registry.New(kinds)
	metrics.UpdateRegistrySignals(s.registry.Size())

	s.started = true
	s.logger.Info(ctx, "ingestion service started",
		logger.Int("registrySignals", s.registry.Size()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping ingestion service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "ingestion service stopped")
}

// acceptedReading is one classified reading waiting for the raw store.
type acceptedReading struct {
	name  string
	value float64
}

// Ingest runs the pipeline for one telemetry batch. The state machine is
// terminal on the first hard failure: a malformed timestamp or unknown
// vessel rejects the batch before any write, while a storage failure
// aborts immediately and leaves earlier writes committed (the sinks are
// not transactional across a request).
func (s *Service) Ingest(ctx context.Context, batch model.Batch) (model.Summary, error) {
	s.mu.RLock()
	started, store, reg := s.started, s.store, s.registry
	s.mu.RUnlock()
	if !started {
		return model.Summary{}, ErrNotStarted
	}

	totalStart := time.Now()

	ts, err := time.Parse(time.RFC3339, batch.TimestampUTC)
	if err != nil {
		metrics.RecordBatchRejected("invalid_timestamp")
		return model.Summary{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, batch.TimestampUTC)
	}
	ts = ts.UTC()

	validationStart := time.Now()
	exists, err := store.VesselExists(ctx, batch.VesselID)
	if err != nil {
		metrics.RecordBatchRejected("storage_error")
		metrics.RecordStorageError()
		return model.Summary{}, fmt.Errorf("vessel check: %w", err)
	}
	if !exists {
		metrics.RecordBatchRejected("unknown_vessel")
		return model.Summary{}, fmt.Errorf("%w: %q", ErrUnknownVessel, batch.VesselID)
	}

	// Classify every reading independently; quarantined readings go to
	// the filtered store as they are found, accepted ones are collected
	// for the ingestion phase.
	accepted := make([]acceptedReading, 0, len(batch.Readings))
	quarantined := 0
	for name, raw := range batch.Readings {
		kind, known := reg.Lookup(name)
		out := signal.Classify(kind, known, raw)
		if out.Accepted {
			accepted = append(accepted, acceptedReading{name: name, value: out.Value})
			continue
		}

		quarantined++
		metrics.RecordSignalQuarantined(string(out.Reason))
		if err := store.WriteQuarantined(ctx, batch.VesselID, ts, name, out.Value, string(out.Reason)); err != nil {
			metrics.RecordBatchRejected("storage_error")
			metrics.RecordStorageError()
			return model.Summary{}, fmt.Errorf("quarantine write: %w", err)
		}
	}
	validationMs := time.Since(validationStart).Milliseconds()

	ingestionStart := time.Now()
	for _, reading := range accepted {
		if err := store.WriteAccepted(ctx, batch.VesselID, ts, reading.name, reading.value); err != nil {
			metrics.RecordBatchRejected("storage_error")
			metrics.RecordStorageError()
			return model.Summary{}, fmt.Errorf("raw write: %w", err)
		}
	}
	ingestionMs := time.Since(ingestionStart).Milliseconds()
	totalMs := time.Since(totalStart).Milliseconds()

	if err := store.WriteMetrics(ctx, batch.VesselID, validationMs, ingestionMs, totalMs); err != nil {
		metrics.RecordBatchRejected("storage_error")
		metrics.RecordStorageError()
		return model.Summary{}, fmt.Errorf("metrics write: %w", err)
	}

	metrics.RecordBatchIngested()
	metrics.RecordSignalsAccepted(len(accepted))
	metrics.ObservePhaseLatencies(validationMs, ingestionMs, totalMs)

	s.logger.Info(ctx, "telemetry ingested",
		logger.String("vesselId", batch.VesselID),
		logger.Int("validSignals", len(accepted)),
		logger.Int("quarantined", quarantined),
		logger.Int64("validationMs", validationMs),
		logger.Int64("ingestionMs", ingestionMs),
		logger.Int64("totalMs", totalMs),
	)

	return model.Summary{
		VesselID:     batch.VesselID,
		Accepted:     len(accepted),
		Quarantined:  quarantined,
		ValidationMs: validationMs,
		IngestionMs:  ingestionMs,
		TotalMs:      totalMs,
	}, nil
}

// Ping reports storage reachability for the health probe.
func (s *Service) Ping(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return ErrNoStore
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.registry != nil {
		stats["registrySignals"] = s.registry.Size()
	}

	if counter, ok := s.store.(interface {
		SinkCounts(ctx context.Context) (storage.SinkCounts, error)
	}); ok && s.started {
		if counts, err := counter.SinkCounts(context.Background()); err == nil {
			stats["rawRows"] = counts.RawRows
			stats["filteredRows"] = counts.FilteredRows
			stats["metricsRows"] = counts.MetricsRows
		}
	}

	return stats
}
