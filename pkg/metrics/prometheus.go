// Package metrics provides Prometheus metrics for the railshot engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	predictionBuckets []float64
	registry          prometheus.Registerer

	// Core analysis metrics
	analysesTotal     prometheus.Counter
	analysisLatency   prometheus.Histogram
	successPrediction prometheus.Histogram
	validationErrors  prometheus.Counter
	unknownPredicates prometheus.Counter

	// Learning metrics
	trainingRuns    prometheus.Counter
	trainingSamples prometheus.Counter
	trainingLoss    prometheus.Gauge
	memorySize      prometheus.Gauge

	// Geometry metrics
	simulations        prometheus.Counter
	simulationLatency  prometheus.Histogram
	geometryFallbacks  prometheus.Counter
	geometryDifficulty prometheus.Histogram

	// Dispatch queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Task metrics
	tasksCompleted    *prometheus.CounterVec
	taskLatency       *prometheus.HistogramVec
	tasksDropped      prometheus.Counter
	pendingTasks      prometheus.Gauge
	workerCount       prometheus.Gauge
	workerActiveCount prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "railshot",
		subsystem:         "engine",
		histogramBuckets:  prometheus.DefBuckets,
		predictionBuckets: prometheus.LinearBuckets(20, 5, 16),
		registry:          prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Core analysis metrics
	m.analysesTotal = m.counter("analyses_total", "Total number of completed shot analyses")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds",
		"Histogram of end-to-end analysis latency in milliseconds", m.histogramBuckets)
	m.successPrediction = m.histogram("success_prediction_percent",
		"Distribution of heuristic success predictions", m.predictionBuckets)
	m.validationErrors = m.counter("validation_errors_total", "Total number of rejected shot descriptors")
	m.unknownPredicates = m.counter("unknown_predicates_total",
		"Total number of rule evaluations against unregistered predicate keys")

	// Learning metrics
	m.trainingRuns = m.counter("training_runs_total", "Total number of explicit training calls")
	m.trainingSamples = m.counter("training_samples_total", "Total number of samples consumed by training")
	m.trainingLoss = m.gauge("training_loss", "Mean loss after the most recent training call")
	m.memorySize = m.gauge("pattern_memory_entries", "Number of entries held by the pattern memory")

	// Geometry metrics
	m.simulations = m.counter("simulations_total", "Total number of reflection path simulations")
	m.simulationLatency = m.histogram("simulation_latency_milliseconds",
		"Histogram of reflection simulation latency in milliseconds", m.histogramBuckets)
	m.geometryFallbacks = m.counter("geometry_fallbacks_total",
		"Total number of degenerate directions resolved by the fallback angle")
	m.geometryDifficulty = m.histogram("geometry_difficulty",
		"Distribution of geometric difficulty scores", prometheus.LinearBuckets(0, 1, 11))

	// Dispatch queue metrics
	m.queueSize = m.gauge("queue_size", "Current number of tasks waiting in the dispatch queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the dispatch queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Dispatch queue utilization ratio (0.0 to 1.0)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of tasks enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of tasks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueue attempts")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Histogram of enqueue latency in milliseconds", m.histogramBuckets)

	// Task metrics
	m.tasksCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tasks_completed_total",
		Help:      "Total number of dispatched tasks completed, by kind and outcome",
	}, []string{"kind", "outcome"})

	m.taskLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "task_latency_milliseconds",
		Help:      "Histogram of task processing latency in milliseconds, by kind",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})

	m.tasksDropped = m.counter("tasks_dropped_total",
		"Total number of completions dropped because no caller was waiting")
	m.pendingTasks = m.gauge("pending_tasks", "Number of dispatched tasks awaiting completion")
	m.workerCount = m.gauge("worker_count", "Number of dispatch workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of dispatch workers currently running a task")

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	// Error metrics
	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by HTTP endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_milliseconds",
		Help:      "Latency of operations that resulted in errors",
		Buckets:   m.histogramBuckets,
	}, []string{"component", "error_type"})

	// System metrics
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Current memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds",
		"Histogram of GC pause times in milliseconds", m.histogramBuckets)
}

// Analysis metrics.

// RecordAnalysis records a completed analysis with its latency and success prediction.
func RecordAnalysis(latencyMs float64, successPrediction int) {
	globalManager.analysesTotal.Inc()
	globalManager.analysisLatency.Observe(latencyMs)
	globalManager.successPrediction.Observe(float64(successPrediction))
}

// RecordValidationError increments the rejected descriptor counter.
func RecordValidationError() {
	globalManager.validationErrors.Inc()
}

// RecordUnknownPredicate increments the unknown predicate counter.
func RecordUnknownPredicate() {
	globalManager.unknownPredicates.Inc()
}

// RecordTraining records one explicit training call.
func RecordTraining(samples int, loss float64) {
	globalManager.trainingRuns.Inc()
	globalManager.trainingSamples.Add(float64(samples))
	globalManager.trainingLoss.Set(loss)
}

// UpdateMemorySize sets the number of pattern memory entries.
func UpdateMemorySize(size int) {
	globalManager.memorySize.Set(float64(size))
}

// Geometry metrics.

// RecordSimulation records one reflection simulation.
func RecordSimulation(latencyMs, difficulty float64) {
	globalManager.simulations.Inc()
	globalManager.simulationLatency.Observe(latencyMs)
	globalManager.geometryDifficulty.Observe(difficulty)
}

// RecordGeometryFallback increments the degenerate direction counter.
func RecordGeometryFallback() {
	globalManager.geometryFallbacks.Inc()
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Task metrics.

// RecordTaskCompleted records a finished task by kind and outcome.
func RecordTaskCompleted(kind string, success bool, latencyMs float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	globalManager.tasksCompleted.WithLabelValues(kind, outcome).Inc()
	globalManager.taskLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordTaskDropped increments the dropped completion counter.
func RecordTaskDropped() {
	globalManager.tasksDropped.Inc()
}

// UpdatePendingTasks sets the number of tasks awaiting completion.
func UpdatePendingTasks(count int) {
	globalManager.pendingTasks.Set(float64(count))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

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
