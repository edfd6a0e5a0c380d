package simulator

import "time"

// Config holds configuration for the telemetry load generator.
type Config struct {
	BaseURL    string        // Base URL of the ingestion service
	APIToken   string        // Bearer token presented on every request
	NumBatches int           // Number of telemetry batches to generate
	NumVessels int           // Number of distinct vessel IDs to rotate through
	BatchSize  int           // Number of signals per batch
	FaultRate  float64       // Fraction of readings deliberately out of spec
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated batches
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Batch is one telemetry payload as it goes over the wire.
type Batch struct {
	VesselID     string                 `json:"vesselId"`
	TimestampUTC string                 `json:"timestampUTC"`
	Signals      map[string]interface{} `json:"signals"`
}

// IngestAck mirrors the success body of POST /api/v1/telemetry.
type IngestAck struct {
	OK           bool   `json:"ok"`
	VesselID     string `json:"vesselId"`
	ValidSignals int    `json:"validSignals"`
	ValidationMs int64  `json:"validationMs"`
	IngestionMs  int64  `json:"ingestionMs"`
	TotalMs      int64  `json:"totalMs"`
}

// Stats holds load-run statistics.
type Stats struct {
	BatchesGenerated int
	BatchesSubmitted int
	BatchesAccepted  int
	BatchesRejected  int
	BatchesFailed    int
	SignalsAccepted  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
