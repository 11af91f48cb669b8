// Package metrics provides Prometheus metrics for the gradebook service.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Grade points run from 1.00 to 5.00; the retake threshold sits at 3.00.
var finalGradeBuckets = []float64{1.25, 1.5, 1.75, 2, 2.25, 2.5, 2.75, 3, 3.5, 4, 4.5, 5}

var probabilityBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 99, 100}

// Manager manages all Prometheus metrics for the gradebook service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Evaluation outcomes
	evaluations           *prometheus.CounterVec
	retakes               prometheus.Counter
	finalGrade            prometheus.Histogram
	graduationProbability prometheus.Histogram
	evaluationLatency     prometheus.Histogram
	validationErrors      *prometheus.CounterVec

	// History store
	historyOpLatency *prometheus.HistogramVec
	historyOpErrors  *prometheus.CounterVec
	historySize      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
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
		namespace:        "gradebook",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(
		m.counterOpts("evaluations_total", "Total number of evaluations by status"),
		[]string{"status"},
	)
	m.retakes = auto.NewCounter(m.counterOpts("retakes_total", "Total number of evaluations that require a retake"))
	m.finalGrade = auto.NewHistogram(m.histogramOpts("final_grade", "Distribution of final grade points", finalGradeBuckets))
	m.graduationProbability = auto.NewHistogram(m.histogramOpts(
		"graduation_probability_percent", "Distribution of estimated graduation probability", probabilityBuckets))
	m.evaluationLatency = auto.NewHistogram(m.histogramOpts(
		"evaluation_latency_milliseconds", "Evaluation latency in milliseconds including persistence", m.histogramBuckets))
	m.validationErrors = auto.NewCounterVec(
		m.counterOpts("validation_errors_total", "Rejected submission fields"),
		[]string{"field"},
	)

	m.historyOpLatency = auto.NewHistogramVec(
		m.histogramOpts("history_operation_latency_milliseconds", "History store operation latency in milliseconds", m.histogramBuckets),
		[]string{"op", "backend"},
	)
	m.historyOpErrors = auto.NewCounterVec(
		m.counterOpts("history_operation_errors_total", "History store operation failures"),
		[]string{"op", "backend"},
	)
	m.historySize = auto.NewGauge(m.gaugeOpts("history_size", "Number of evaluations currently retained"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "Total number of HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordEvaluation records one completed evaluation.
func (m *Manager) RecordEvaluation(status string, finalGrade, probability float64, needsRetake bool) {
	m.evaluations.WithLabelValues(status).Inc()
	m.finalGrade.Observe(finalGrade)
	m.graduationProbability.Observe(probability)
	if needsRetake {
		m.retakes.Inc()
	}
}

// RecordEvaluation records one completed evaluation on the global manager.
func RecordEvaluation(status string, finalGrade, probability float64, needsRetake bool) {
	globalManager.RecordEvaluation(status, finalGrade, probability, needsRetake)
}

// RecordEvaluationLatency records evaluation latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordValidationError increments the rejected-field counter.
func RecordValidationError(field string) {
	globalManager.validationErrors.WithLabelValues(field).Inc()
}

// RecordHistoryOperation records latency of a history store operation and counts failures.
func RecordHistoryOperation(op, backend string, latencyMs float64, err error) {
	globalManager.historyOpLatency.WithLabelValues(op, backend).Observe(latencyMs)
	if err != nil {
		globalManager.historyOpErrors.WithLabelValues(op, backend).Inc()
	}
}

// UpdateHistorySize sets the number of retained evaluations.
func UpdateHistorySize(size int) {
	globalManager.historySize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response with endpoint, method, and error type labels.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
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

// CollectSystemMetrics samples runtime memory, goroutine and GC figures once.
func CollectSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		RecordSystemGCPauseTime(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemCollector samples system metrics every refresh interval until ctx is done.
func RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()

	CollectSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CollectSystemMetrics()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
