package simulator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/okian/lodestar/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	faultKindDivisor   = 4
)

// Fault kinds injected when a reading is generated out of spec.
const (
	faultAnalogLow     = 0 // analog below the accepted floor
	faultAnalogHigh    = 1 // analog above the accepted ceiling
	faultDigitalBad    = 2 // digital outside {0, 1}
	faultUnknownSignal = 3 // name absent from the registry
)

// analogSignals are registry names paired with a plausible value range.
var analogSignals = []struct {
	name     string
	min, max float64
}{
	{"engineTemp", 60, 110},
	{"shaftRPM", 100, 1800},
	{"fuelFlowRate", 50, 400},
	{"oilPressure", 2, 8},
	{"rudderAngle", 1, 70},
	{"batteryVoltage", 11, 29},
}

// digitalSignals are registry names whose readings are 0 or 1.
var digitalSignals = []string{
	"bilgeAlarm",
	"fireAlarm",
	"gpsFix",
	"autopilotEngaged",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// VesselID formats the nth synthetic vessel identifier. The same scheme
// seeds the vessel register so generated batches pass the existence check.
func VesselID(n int) string {
	return fmt.Sprintf("SIM-V%03d", n)
}

// generateBatches creates the configured number of telemetry batches,
// rotating through the synthetic vessel fleet.
func generateBatches(ctx context.Context, config *Config, stats *Stats) ([]Batch, error) {
	logger.Get().Info(ctx, "generating telemetry batches",
		logger.Int("numBatches", config.NumBatches),
		logger.Int("numVessels", config.NumVessels),
		logger.Int("batchSize", config.BatchSize),
		logger.Float64("faultRate", config.FaultRate))

	batches := make([]Batch, config.NumBatches)

	type batchResult struct {
		index int
		batch Batch
		err   error
	}

	resultChan := make(chan batchResult, config.NumBatches)

	// Use worker pool for batch generation
	workerCount := minInt(config.Workers, config.NumBatches)
	batchesPerWorker := config.NumBatches / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * batchesPerWorker
		end := start + batchesPerWorker
		if worker == workerCount-1 {
			end = config.NumBatches // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- batchResult{index: i, err: ctx.Err()}
					return
				default:
					batch := generateSingleBatch(config, VesselID(i%config.NumVessels))
					resultChan <- batchResult{index: i, batch: batch, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumBatches; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during batch generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate batch %d: %w", result.index, result.err)
			}
			batches[result.index] = result.batch
		}
	}

	stats.BatchesGenerated = len(batches)
	logger.Get().Info(ctx, "generated batches successfully", logger.Int("count", len(batches)))

	return batches, nil
}

// generateSingleBatch builds one batch for the given vessel, mixing
// analog and digital readings and injecting faults at the configured rate.
func generateSingleBatch(config *Config, vesselID string) Batch {
	// Collisions on signal names overwrite; a batch may carry fewer
	// distinct readings than BatchSize, which real producers also do.
	signals := make(map[string]interface{}, config.BatchSize)

	for i := 0; i < config.BatchSize; i++ {
		if getRandomFloat() < config.FaultRate {
			name, value := generateFaultyReading()
			signals[name] = value
			continue
		}
		name, value := generateHealthyReading()
		signals[name] = value
	}

	return Batch{
		VesselID:     vesselID,
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		Signals:      signals,
	}
}

// generateHealthyReading returns a reading that should be accepted.
func generateHealthyReading() (string, interface{}) {
	// Roughly one digital reading per analog one.
	if getRandomInt(2) == 0 {
		name := digitalSignals[getRandomInt(len(digitalSignals))]
		return name, getRandomInt(2)
	}
	sig := analogSignals[getRandomInt(len(analogSignals))]
	return sig.name, sig.min + getRandomFloat()*(sig.max-sig.min)
}

// generateFaultyReading returns a reading the pipeline should quarantine.
func generateFaultyReading() (string, interface{}) {
	switch getRandomInt(faultKindDivisor) {
	case faultAnalogLow:
		sig := analogSignals[getRandomInt(len(analogSignals))]
		return sig.name, getRandomFloat() * 0.9
	case faultAnalogHigh:
		sig := analogSignals[getRandomInt(len(analogSignals))]
		return sig.name, 65536.0 + getRandomFloat()*1000
	case faultDigitalBad:
		name := digitalSignals[getRandomInt(len(digitalSignals))]
		return name, 2 + getRandomInt(9)
	default:
		return fmt.Sprintf("ghostSignal%d", getRandomInt(100)), getRandomFloat() * 100
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
