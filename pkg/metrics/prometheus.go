// Package metrics provides Prometheus metrics for the judge scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var defaultLatencyBuckets = []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// spreadBuckets cover the percentage spread between min and max judge totals.
var spreadBuckets = []float64{1, 2.5, 5, 7.5, 10, 15, 20, 30, 50, 75, 100}

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Scoring
	scoresRecorded     *prometheus.CounterVec
	scoresSubmitted    prometheus.Counter
	scoringErrors      *prometheus.CounterVec
	consistencyChecks  *prometheus.CounterVec
	consistencySpread  prometheus.Histogram
	advisoriesEmitted  prometheus.Counter
	advisoryDuplicates prometheus.Counter
	advisoryDropped    prometheus.Counter

	// Advisory queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "gscms",
		subsystem:      "scoring",
		latencyBuckets: defaultLatencyBuckets,
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.scoresRecorded = auto.NewCounterVec(
		m.counterOpts("scores_recorded_total", "Scores persisted by judges, labelled by resulting status"),
		[]string{"status"},
	)
	m.scoresSubmitted = auto.NewCounter(
		m.counterOpts("scores_submitted_total", "Scores transitioned to submitted"),
	)
	m.scoringErrors = auto.NewCounterVec(
		m.counterOpts("errors_total", "Scoring failures by kind (validation, state, storage)"),
		[]string{"kind"},
	)
	m.consistencyChecks = auto.NewCounterVec(
		m.counterOpts("consistency_checks_total", "Consistency evaluations by outcome"),
		[]string{"outcome"},
	)
	m.consistencySpread = auto.NewHistogram(
		m.histogramOpts("consistency_spread_percent", "Spread between min and max judge totals relative to their mean", spreadBuckets),
	)
	m.advisoriesEmitted = auto.NewCounter(
		m.counterOpts("advisories_emitted_total", "Conflict advisories persisted for admin review"),
	)
	m.advisoryDuplicates = auto.NewCounter(
		m.counterOpts("advisories_duplicate_total", "Conflict advisories suppressed as duplicates"),
	)
	m.advisoryDropped = auto.NewCounter(
		m.counterOpts("advisories_dropped_total", "Conflict advisories dropped on queue backpressure"),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("advisory_queue_size", "Advisories waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("advisory_queue_capacity", "Advisory queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("advisory_queue_utilization_ratio", "Advisory queue fill ratio (0-1)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("advisory_queue_enqueued_total", "Advisories enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("advisory_queue_dequeued_total", "Advisories dequeued"))
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counterOpts("advisory_queue_enqueue_errors_total", "Failed advisory enqueues by reason"),
		[]string{"reason"},
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("advisory_workers", "Advisory workers running"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("advisory_worker_latency_milliseconds", "Time to persist one advisory", m.latencyBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("advisory_worker_errors_total", "Advisory worker failures"))

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Score store operation latency", m.latencyBuckets),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Score store failures by operation"),
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request latency", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("http_errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByType = auto.NewCounterVec(
		m.counterOpts("http_errors_by_type_total", "HTTP errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}),
	)
}

// Scoring.

// RecordScoreRecorded counts a persisted score with its resulting status.
func RecordScoreRecorded(status string) {
	globalManager.scoresRecorded.WithLabelValues(status).Inc()
}

// RecordScoreSubmitted counts a submit transition.
func RecordScoreSubmitted() {
	globalManager.scoresSubmitted.Inc()
}

// RecordScoringError counts a failure of the given kind.
func RecordScoringError(kind string) {
	globalManager.scoringErrors.WithLabelValues(kind).Inc()
}

// RecordConsistencyCheck counts an evaluation and observes its spread.
func RecordConsistencyCheck(consistent bool, spreadPct float64) {
	outcome := "consistent"
	if !consistent {
		outcome = "conflicting"
	}
	globalManager.consistencyChecks.WithLabelValues(outcome).Inc()
	globalManager.consistencySpread.Observe(spreadPct)
}

// RecordAdvisoryEmitted counts a persisted advisory.
func RecordAdvisoryEmitted() {
	globalManager.advisoriesEmitted.Inc()
}

// RecordAdvisoryDuplicate counts a suppressed advisory.
func RecordAdvisoryDuplicate() {
	globalManager.advisoryDuplicates.Inc()
}

// RecordAdvisoryDropped counts an advisory lost to backpressure.
func RecordAdvisoryDropped() {
	globalManager.advisoryDropped.Inc()
}

// Advisory queue.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts a successful enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// Workers.

// UpdateWorkerCount sets the number of running advisory workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes the time spent on one advisory.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Store.

// RecordStoreLatency observes one store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
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
