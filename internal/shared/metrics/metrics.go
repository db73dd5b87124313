package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Upload metrics
	UploadPhaseTotal    *prometheus.CounterVec
	UploadPhaseDuration *prometheus.HistogramVec

	// Draft submission metrics
	DraftSubmitTotal    *prometheus.CounterVec
	DraftSubmitDuration *prometheus.HistogramVec

	// Poll metrics
	PollTicksTotal       *prometheus.CounterVec
	PollOutcomeTotal     *prometheus.CounterVec
	PollSettleDuration   *prometheus.HistogramVec

	// Orchestrator metrics
	OrchestratorCallTotal    *prometheus.CounterVec
	OrchestratorCallDuration *prometheus.HistogramVec

	// Session pool metrics
	PoolAcquireTotal  *prometheus.CounterVec
	PoolActiveGauge   *prometheus.GaugeVec

	// Credit cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "genbridge"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		UploadPhaseTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upload",
				Name:      "phase_total",
				Help:      "Total number of upload phase attempts",
			},
			[]string{"phase", "status"}, // phase: token, apply, put, commit
		),
		UploadPhaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upload",
				Name:      "phase_duration_seconds",
				Help:      "Upload phase duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"phase"},
		),

		DraftSubmitTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "draft",
				Name:      "submit_total",
				Help:      "Total number of draft submissions",
			},
			[]string{"mode", "status"},
		),
		DraftSubmitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "draft",
				Name:      "submit_duration_seconds",
				Help:      "Draft submission round-trip duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"mode"},
		),

		PollTicksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "poll",
				Name:      "ticks_total",
				Help:      "Total number of poll ticks issued",
			},
			[]string{"region"},
		),
		PollOutcomeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "poll",
				Name:      "outcome_total",
				Help:      "Terminal poll outcomes by classification",
			},
			[]string{"outcome"}, // success, failed, timeout, stall
		),
		PollSettleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "poll",
				Name:      "settle_duration_seconds",
				Help:      "Time from first poll tick to terminal outcome",
				Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 180, 300},
			},
			[]string{"outcome"},
		),

		OrchestratorCallTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "calls_total",
				Help:      "Total number of orchestrator operation invocations",
			},
			[]string{"operation", "status"},
		),
		OrchestratorCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "call_duration_seconds",
				Help:      "Orchestrator operation duration in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),

		PoolAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "acquire_total",
				Help:      "Total number of session pool acquisitions",
			},
			[]string{"status"}, // ok, timeout, exhausted
		),
		PoolActiveGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "active_sessions",
				Help:      "Number of sessions currently leased out",
			},
			[]string{"region"},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUploadPhase records the outcome and latency of one upload phase.
func (m *Metrics) RecordUploadPhase(phase, status string, duration time.Duration) {
	m.UploadPhaseTotal.WithLabelValues(phase, status).Inc()
	m.UploadPhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordDraftSubmit records a draft submission attempt.
func (m *Metrics) RecordDraftSubmit(mode, status string, duration time.Duration) {
	m.DraftSubmitTotal.WithLabelValues(mode, status).Inc()
	m.DraftSubmitDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordPollTick records a single poll attempt for a region.
func (m *Metrics) RecordPollTick(region string) {
	m.PollTicksTotal.WithLabelValues(region).Inc()
}

// RecordPollOutcome records the terminal classification of a poll sequence.
func (m *Metrics) RecordPollOutcome(outcome string, settleTime time.Duration) {
	m.PollOutcomeTotal.WithLabelValues(outcome).Inc()
	m.PollSettleDuration.WithLabelValues(outcome).Observe(settleTime.Seconds())
}

// RecordOrchestratorCall records one orchestrator operation invocation.
func (m *Metrics) RecordOrchestratorCall(operation, status string, duration time.Duration) {
	m.OrchestratorCallTotal.WithLabelValues(operation, status).Inc()
	m.OrchestratorCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPoolAcquire records a session pool acquisition attempt.
func (m *Metrics) RecordPoolAcquire(status string) {
	m.PoolAcquireTotal.WithLabelValues(status).Inc()
}

// SetPoolActive sets the number of leased-out sessions for a region.
func (m *Metrics) SetPoolActive(region string, count int) {
	m.PoolActiveGauge.WithLabelValues(region).Set(float64(count))
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
