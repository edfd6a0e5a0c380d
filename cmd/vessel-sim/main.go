package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/lodestar/internal/simulator"
)

// Default configuration constants.
const (
	defaultNumBatches = 10000
	defaultNumVessels = 25
	defaultBatchSize  = 8
	defaultFaultRate  = 0.1
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the ingestion service")
		apiToken   = flag.String("token", os.Getenv("LODESTAR_API_TOKEN"), "Bearer token for the telemetry endpoint")
		numBatches = flag.Int("batches", defaultNumBatches, "Number of telemetry batches to generate and submit")
		numVessels = flag.Int("vessels", defaultNumVessels, "Number of distinct vessel IDs to rotate through")
		batchSize  = flag.Int("signals", defaultBatchSize, "Number of signals per batch")
		faultRate  = flag.Float64("fault-rate", defaultFaultRate, "Fraction of readings generated out of spec")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated batches (default: generated_batches_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: simulator_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logging
	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &simulator.Config{
		BaseURL:    *baseURL,
		APIToken:   *apiToken,
		NumBatches: *numBatches,
		NumVessels: *numVessels,
		BatchSize:  *batchSize,
		FaultRate:  *faultRate,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the load generator
	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		return
	}
}
