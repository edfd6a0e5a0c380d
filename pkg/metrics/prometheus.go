// Package metrics provides Prometheus metrics for the lodestar telemetry service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the lodestar service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - batch and signal outcomes
	batchesIngested    prometheus.Counter
	batchesRejected    *prometheus.CounterVec
	signalsAccepted    prometheus.Counter
	signalsQuarantined *prometheus.CounterVec

	// Pipeline Phase Latency Metrics - the three per-request windows
	validationLatency prometheus.Histogram
	ingestionLatency  prometheus.Histogram
	totalLatency      prometheus.Histogram

	// Operational Health Metrics
	registrySignals prometheus.Gauge
	storageErrors   prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lodestar",
		subsystem:        "telemetry",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.batchesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_ingested_total",
		Help:      "Total number of telemetry batches processed end to end",
	})

	m.batchesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_rejected_total",
		Help:      "Total number of telemetry batches rejected before completion",
	}, []string{"reason"})

	m.signalsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_accepted_total",
		Help:      "Total number of readings written to the raw store",
	})

	m.signalsQuarantined = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_quarantined_total",
		Help:      "Total number of readings routed to the filtered store",
	}, []string{"reason"})

	m.validationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_latency_milliseconds",
		Help:      "Histogram of the vessel-check plus classification phase in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ingestionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingestion_latency_milliseconds",
		Help:      "Histogram of the accepted-write phase in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.totalLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_latency_milliseconds",
		Help:      "Histogram of full request handling in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.registrySignals = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_signals",
		Help:      "Number of signal definitions loaded at startup",
	})

	m.storageErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_errors_total",
		Help:      "Total number of storage failures surfaced as internal errors",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordBatchIngested increments the processed-batch counter.
func RecordBatchIngested() {
	if globalManager.enabled {
		globalManager.batchesIngested.Inc()
	}
}

// RecordBatchRejected increments the rejected-batch counter for a reason
// such as "invalid_timestamp", "unknown_vessel" or "storage_error".
func RecordBatchRejected(reason string) {
	if globalManager.enabled {
		globalManager.batchesRejected.WithLabelValues(reason).Inc()
	}
}

// RecordSignalsAccepted adds n accepted readings.
func RecordSignalsAccepted(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.signalsAccepted.Add(float64(n))
	}
}

// RecordSignalQuarantined increments the quarantine counter for a reason.
func RecordSignalQuarantined(reason string) {
	if globalManager.enabled {
		globalManager.signalsQuarantined.WithLabelValues(reason).Inc()
	}
}

// ObservePhaseLatencies records the three per-request latency windows.
func ObservePhaseLatencies(validationMs, ingestionMs, totalMs int64) {
	if !globalManager.enabled {
		return
	}
	globalManager.validationLatency.Observe(float64(validationMs))
	globalManager.ingestionLatency.Observe(float64(ingestionMs))
	globalManager.totalLatency.Observe(float64(totalMs))
}

// UpdateRegistrySignals sets the loaded signal definition count.
func UpdateRegistrySignals(n int) {
	if globalManager.enabled {
		globalManager.registrySignals.Set(float64(n))
	}
}

// RecordStorageError increments the storage failure counter.
func RecordStorageError() {
	if globalManager.enabled {
		globalManager.storageErrors.Inc()
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
	}
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}
