// Package storage defines the persistence gateway for the ingestion
// pipeline: the vessel register, the signal registry source, and the
// three independent sinks (raw store, filtered store, server metrics).
//
// The sinks are deliberately non-transactional across one request. A
// storage failure mid-batch leaves earlier rows committed; the
// orchestrator surfaces the failure and nothing is rolled back.
package storage

import (
	"context"
	"time"

	signal "github.com/okian/lodestar/internal/domain/signal"
)

// Store provides access to the vessel register, the registry source and
// the persistence sinks. Implementations must be safe for concurrent use.
type Store interface {
	// VesselExists reports whether vesselID is registered and active.
	VesselExists(ctx context.Context, vesselID string) (bool, error)

	// SignalKinds loads the full signal registry. Called once at startup.
	SignalKinds(ctx context.Context) (map[string]signal.Kind, error)

	// WriteAccepted appends one reading to the raw store.
	WriteAccepted(ctx context.Context, vesselID string, ts time.Time, name string, value float64) error

	// WriteQuarantined appends one rejected reading to the filtered store.
	// value may be NaN (stored as NULL).
	WriteQuarantined(ctx context.Context, vesselID string, ts time.Time, name string, value float64, reason string) error

	// WriteMetrics appends one per-request latency row.
	WriteMetrics(ctx context.Context, vesselID string, validationMs, ingestionMs, totalMs int64) error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
}

// SinkCounts is a row-count snapshot across the sinks, used by /stats.
type SinkCounts struct {
	RawRows      int64
	FilteredRows int64
	MetricsRows  int64
}
