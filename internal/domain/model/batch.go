// Package model contains domain models passed between layers.
package model

import (
	signal "github.com/okian/lodestar/internal/domain/signal"
)

// Batch represents one telemetry submission from a vessel. Fields mirror
// the JSON body of POST /api/v1/telemetry. TimestampUTC is carried as the
// raw wire string; the orchestrator owns parsing it so a malformed
// timestamp rejects the whole batch before any persistence.
type Batch struct {
	VesselID     string                     // reporting vessel identifier
	TimestampUTC string                     // RFC-3339 instant, unparsed
	EpochUTC     int64                      // optional epoch seconds, unused by the pipeline
	Readings     map[string]signal.RawValue // signal name -> raw value
}

// Summary captures the per-request outcome returned to the caller and
// recorded in the metrics sink.
type Summary struct {
	VesselID     string
	Accepted     int   // readings written to the raw store
	Quarantined  int   // readings written to the filtered store
	ValidationMs int64 // vessel check + classification + quarantine writes
	IngestionMs  int64 // accepted writes
	TotalMs      int64 // whole request
}
