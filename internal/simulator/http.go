package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lodestar/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout and bearer token.
type HTTPClient struct {
	client *http.Client
	token  string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, token string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and the bearer token.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitResult classifies one submission attempt.
type submitResult struct {
	outcome  string // "accepted", "rejected" or "failed"
	accepted int    // validSignals reported by the service
}

// submitBatches submits batches concurrently using a worker pool.
func submitBatches(ctx context.Context, config *Config, batches []Batch, stats *Stats) error {
	logger.Get().Info(ctx, "submitting batches",
		logger.Int("count", len(batches)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout, config.APIToken)
	url := config.BaseURL + "/api/v1/telemetry"

	// Counters for statistics
	var (
		submitted int64
		accepted  int64
		rejected  int64
		failed    int64
		signals   int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	batchChan := make(chan Batch, config.Workers*2)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for batch := range batchChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleBatch(ctx, client, url, batch)

					atomic.AddInt64(&submitted, 1)
					switch result.outcome {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
						atomic.AddInt64(&signals, int64(result.accepted))
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose && time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						logger.Get().Info(ctx, "progress",
							logger.Int64("submitted", atomic.LoadInt64(&submitted)),
							logger.Int("total", len(batches)),
							logger.Int64("accepted", atomic.LoadInt64(&accepted)),
							logger.Int64("rejected", atomic.LoadInt64(&rejected)),
							logger.Int64("failed", atomic.LoadInt64(&failed)))
					}
				}
			}
		}()
	}

	// Send batches to workers
	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Update stats
	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BatchesAccepted = int(atomic.LoadInt64(&accepted))
	stats.BatchesRejected = int(atomic.LoadInt64(&rejected))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))
	stats.SignalsAccepted = int(atomic.LoadInt64(&signals))

	logger.Get().Info(ctx, "batch submission completed",
		logger.Int("accepted", stats.BatchesAccepted),
		logger.Int("rejected", stats.BatchesRejected),
		logger.Int("failed", stats.BatchesFailed),
		logger.Int("signalsAccepted", stats.SignalsAccepted))

	return nil
}

// submitSingleBatch submits a single batch and classifies the outcome.
func submitSingleBatch(ctx context.Context, client *HTTPClient, url string, batch Batch) submitResult {
	resp, err := client.Post(ctx, url, batch)
	if err != nil {
		return submitResult{outcome: "failed"}
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return submitResult{outcome: "failed"}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var ack IngestAck
		if err := json.Unmarshal(body, &ack); err == nil && ack.OK {
			return submitResult{outcome: "accepted", accepted: ack.ValidSignals}
		}
		return submitResult{outcome: "accepted"}
	case http.StatusBadRequest, http.StatusForbidden:
		// The service refused the batch before persisting anything.
		return submitResult{outcome: "rejected"}
	default:
		return submitResult{outcome: "failed"}
	}
}
