// Package metrics provides Prometheus metrics for roboscout runs.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request latency buckets in milliseconds; the API usually answers in
// well under a second but rate-limited pages can take much longer.
var defaultLatencyBuckets = []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// Manager owns every Prometheus collector of a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Remote API
	apiRequests       *prometheus.CounterVec
	apiRequestLatency *prometheus.HistogramVec
	apiRetries        *prometheus.CounterVec
	rateLimitWaits    prometheus.Counter
	rateLimitSeconds  prometheus.Counter
	fetchOutcomes     *prometheus.CounterVec
	pagesFetched      prometheus.Counter

	// Aggregation
	teamsProcessed    prometheus.Counter
	teamsNotFound     prometheus.Counter
	teamsInFlight     prometheus.Gauge
	queueDepth        prometheus.Gauge
	eventsProcessed   *prometheus.CounterVec
	recordsSkipped    *prometheus.CounterVec
	reportRowsWritten prometheus.Counter

	// Status server
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseMs   prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roboscout",
		subsystem:        "aggregator",
		histogramBuckets: defaultLatencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_requests_total",
		Help:      "Requests sent to the competition API by resource and status class",
	}, []string{"resource", "status"})

	m.apiRequestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_request_duration_milliseconds",
		Help:      "Competition API round trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"resource"})

	m.apiRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_retries_total",
		Help:      "Page requests retried after a transient failure",
	}, []string{"resource", "cause"})

	m.rateLimitWaits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_waits_total",
		Help:      "Number of 429 responses that caused a wait",
	})

	m.rateLimitSeconds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_wait_seconds_total",
		Help:      "Seconds spent waiting on 429 responses",
	})

	m.fetchOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_outcomes_total",
		Help:      "Collection fetches by resource and final reason",
	}, []string{"resource", "reason"})

	m.pagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pages_fetched_total",
		Help:      "Collection pages decoded successfully",
	})

	m.teamsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_processed_total",
		Help:      "Teams aggregated successfully",
	})

	m.teamsNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_not_found_total",
		Help:      "Team codes that could not be resolved",
	})

	m.teamsInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_in_flight",
		Help:      "Teams currently being aggregated",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Team jobs waiting for a worker",
	})

	m.eventsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Events processed by the match strategy that produced data",
	}, []string{"strategy"})

	m.recordsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_skipped_total",
		Help:      "Match or skills records skipped as malformed or foreign",
	}, []string{"kind"})

	m.reportRowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_rows_written_total",
		Help:      "Team rows written to report files",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "status",
		Name:      "http_requests_total",
		Help:      "Requests served by the status server",
	}, []string{"endpoint", "method", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "status",
		Name:      "http_request_duration_milliseconds",
		Help:      "Status server handler latency in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500},
	}, []string{"endpoint"})

	m.systemMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_alloc_bytes",
		Help:      "Heap bytes allocated and in use",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of live goroutines",
	})

	m.systemGCPauseMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_avg_milliseconds",
		Help:      "Average GC pause in milliseconds",
	})
}

// StatusClass buckets an HTTP status code for the status label.
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "transport_error"
	case code == 429:
		return "rate_limit"
	case code == 404:
		return "not_found"
	case code >= 500:
		return "server_error"
	case code >= 400:
		return "client_error"
	default:
		return strconv.Itoa(code/100) + "xx"
	}
}

// RecordAPIRequest counts one round trip and observes its latency.
func RecordAPIRequest(resource string, statusCode int, latencyMs float64) {
	globalManager.apiRequests.WithLabelValues(resource, StatusClass(statusCode)).Inc()
	globalManager.apiRequestLatency.WithLabelValues(resource).Observe(latencyMs)
}

// RecordRetry counts a retried page request.
func RecordRetry(resource, cause string) {
	globalManager.apiRetries.WithLabelValues(resource, cause).Inc()
}

// RecordRateLimitWait counts a 429 wait of the given length.
func RecordRateLimitWait(seconds float64) {
	globalManager.rateLimitWaits.Inc()
	globalManager.rateLimitSeconds.Add(seconds)
}

// RecordFetchOutcome counts a completed collection fetch.
func RecordFetchOutcome(resource, reason string) {
	globalManager.fetchOutcomes.WithLabelValues(resource, reason).Inc()
}

// RecordPageFetched counts one decoded page.
func RecordPageFetched() {
	globalManager.pagesFetched.Inc()
}

// RecordTeamProcessed counts an aggregated team.
func RecordTeamProcessed() {
	globalManager.teamsProcessed.Inc()
}

// RecordTeamNotFound counts an unresolved team code.
func RecordTeamNotFound() {
	globalManager.teamsNotFound.Inc()
}

// TeamStarted marks a team as in flight.
func TeamStarted() {
	globalManager.teamsInFlight.Inc()
}

// TeamFinished clears an in-flight team.
func TeamFinished() {
	globalManager.teamsInFlight.Dec()
}

// UpdateQueueDepth sets the number of queued team jobs.
func UpdateQueueDepth(n int) {
	globalManager.queueDepth.Set(float64(n))
}

// RecordEventProcessed counts an event under the strategy that produced its
// matches ("flat", "divisions" or "none").
func RecordEventProcessed(strategy string) {
	globalManager.eventsProcessed.WithLabelValues(strategy).Inc()
}

// RecordSkipped counts n skipped records of a kind ("match", "skills",
// "decode").
func RecordSkipped(kind string, n int) {
	if n <= 0 {
		return
	}
	globalManager.recordsSkipped.WithLabelValues(kind).Add(float64(n))
}

// RecordReportRows counts rows written to report files.
func RecordReportRows(n int) {
	globalManager.reportRowsWritten.Add(float64(n))
}

// RecordHTTPRequest counts one status server request.
func RecordHTTPRequest(endpoint, method string, statusCode int, latencyMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
	globalManager.httpDuration.WithLabelValues(endpoint).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryBytes.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime sets the average GC pause gauge.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseMs.Set(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
