// Package metrics provides Prometheus metrics for the Orquesta assignment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Orquesta service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Assignment Metrics - What the engine is producing
	assignmentsTotal   prometheus.Counter
	slotsUnfilled      prometheus.Counter
	assignDuration     prometheus.Histogram
	candidatesPerWeek  prometheus.Histogram
	explorationEpsilon prometheus.Gauge

	// Learning Metrics - Feedback and weight movement
	feedbackTotal  *prometheus.CounterVec
	weightUpdates  prometheus.Counter
	weightKeys     prometheus.Gauge
	historyEntries prometheus.Gauge

	// Persistence Metrics - Store health
	persistDuration prometheus.Histogram
	persistRetries  prometheus.Counter
	persistFailures prometheus.Counter
	storeErrors     prometheus.Counter
	breakerOpen     prometheus.Gauge
	flushQueueSize  prometheus.Gauge

	// Auth Metrics
	authFailures prometheus.Counter
	tokensIssued prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "orquesta",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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

	// Assignment Metrics
	m.assignmentsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignments_total",
		Help:      "Total number of meeting assignments produced",
	})

	m.slotsUnfilled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slots_unfilled_total",
		Help:      "Total number of slots left without an eligible candidate",
	})

	m.assignDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assign_duration_milliseconds",
		Help:      "Histogram of assignment batch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.candidatesPerWeek = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_per_request",
		Help:      "Histogram of candidate pool sizes per assignment request",
		Buckets:   []float64{5, 10, 20, 30, 50, 75, 100, 150},
	})

	m.explorationEpsilon = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exploration_epsilon",
		Help:      "Current epsilon of the exploration schedule (decays with feedback)",
	})

	// Learning Metrics
	m.feedbackTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feedback_total",
			Help:      "Total number of feedback verdicts by resultado",
		},
		[]string{"resultado"},
	)

	m.weightUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_updates_total",
		Help:      "Total number of individual weight-key updates applied",
	})

	m.weightKeys = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_keys",
		Help:      "Number of keys currently present in the weight vector",
	})

	m.historyEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_entries",
		Help:      "Number of history entries held in memory",
	})

	// Persistence Metrics
	m.persistDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_duration_milliseconds",
		Help:      "Histogram of store save duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.persistRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_retries_total",
		Help:      "Total number of retried store saves",
	})

	m.persistFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_failures_total",
		Help:      "Total number of store saves that failed after all retries",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of store operation errors",
	})

	m.breakerOpen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_breaker_open",
		Help:      "1 when the store circuit breaker is open, 0 otherwise",
	})

	m.flushQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_queue_size",
		Help:      "Current number of snapshots waiting in the flush queue",
	})

	// Auth Metrics
	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected API requests (missing or bad token)",
	})

	m.tokensIssued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tokens_issued_total",
		Help:      "Total number of API tokens issued",
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordAssignment increments the assignments counter.
func RecordAssignment() {
	globalManager.assignmentsTotal.Inc()
}

// RecordSlotUnfilled increments the unfilled-slot counter.
func RecordSlotUnfilled() {
	globalManager.slotsUnfilled.Inc()
}

// RecordAssignDuration records the duration of one assignment batch in milliseconds.
func RecordAssignDuration(latencyMs float64) {
	globalManager.assignDuration.Observe(latencyMs)
}

// RecordCandidatePoolSize records the candidate pool size of one request.
func RecordCandidatePoolSize(n int) {
	globalManager.candidatesPerWeek.Observe(float64(n))
}

// UpdateExplorationEpsilon sets the current exploration epsilon.
func UpdateExplorationEpsilon(eps float64) {
	globalManager.explorationEpsilon.Set(eps)
}

// RecordFeedback increments the feedback counter for a resultado.
func RecordFeedback(resultado string) {
	globalManager.feedbackTotal.WithLabelValues(resultado).Inc()
}

// RecordWeightUpdates adds to the weight-update counter.
func RecordWeightUpdates(count int) {
	globalManager.weightUpdates.Add(float64(count))
}

// UpdateWeightKeys sets the current number of weight keys.
func UpdateWeightKeys(count int) {
	globalManager.weightKeys.Set(float64(count))
}

// UpdateHistoryEntries sets the current number of history entries.
func UpdateHistoryEntries(count int) {
	globalManager.historyEntries.Set(float64(count))
}

// RecordPersistDuration records a store save duration in milliseconds.
func RecordPersistDuration(latencyMs float64) {
	globalManager.persistDuration.Observe(latencyMs)
}

// RecordPersistRetry increments the persist retry counter.
func RecordPersistRetry() {
	globalManager.persistRetries.Inc()
}

// RecordPersistFailure increments the persist failure counter.
func RecordPersistFailure() {
	globalManager.persistFailures.Inc()
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// UpdateBreakerOpen flags whether the store circuit breaker is open.
func UpdateBreakerOpen(open bool) {
	if open {
		globalManager.breakerOpen.Set(1)
		return
	}
	globalManager.breakerOpen.Set(0)
}

// UpdateFlushQueueSize sets the current flush queue depth.
func UpdateFlushQueueSize(size int) {
	globalManager.flushQueueSize.Set(float64(size))
}

// RecordAuthFailure increments the auth failure counter.
func RecordAuthFailure() {
	globalManager.authFailures.Inc()
}

// RecordTokenIssued increments the issued-token counter.
func RecordTokenIssued() {
	globalManager.tokensIssued.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
