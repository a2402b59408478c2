package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	signalsGenerated  *prometheus.CounterVec
	diversityWaivers  prometheus.Counter
	analysisRequests  *prometheus.CounterVec
	analysisDuration  *prometheus.HistogramVec
	analysisTimeouts  *prometheus.CounterVec
	jobsActive        *prometheus.GaugeVec
	notificationsSent *prometheus.CounterVec
	catalogPairs      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartai_signals_generated_total",
			Help: "Total number of signals produced",
		},
		[]string{"kind", "direction"},
	)
	r.diversityWaivers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chartai_diversity_waivers_total",
			Help: "Pair draws that gave up on the recent-pair window",
		},
	)
	r.analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartai_analysis_requests_total",
			Help: "Total number of AI analysis requests",
		},
		[]string{"kind", "status"},
	)
	r.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chartai_analysis_duration_seconds",
			Help:    "AI analysis duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
		},
		[]string{"kind"},
	)
	r.analysisTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartai_analysis_timeouts_total",
			Help: "AI analyses that outlived the user-facing deadline",
		},
		[]string{"kind"},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chartai_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)
	r.notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartai_notifications_total",
			Help: "Reports published to notifiers",
		},
		[]string{"notifier", "status"},
	)
	r.catalogPairs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chartai_catalog_pairs",
			Help: "Number of pairs in the catalog",
		},
	)

	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.diversityWaivers)
	reg.MustRegister(r.analysisRequests)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.analysisTimeouts)
	reg.MustRegister(r.jobsActive)
	reg.MustRegister(r.notificationsSent)
	reg.MustRegister(r.catalogPairs)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSignal records a produced signal.
func (r *Registry) RecordSignal(kind, direction string) {
	r.signalsGenerated.WithLabelValues(kind, direction).Inc()
}

// RecordDiversityWaiver records a waived diversity constraint.
func (r *Registry) RecordDiversityWaiver() {
	r.diversityWaivers.Inc()
}

// RecordAnalysis records a finished AI analysis.
func (r *Registry) RecordAnalysis(kind, status string, duration float64) {
	r.analysisRequests.WithLabelValues(kind, status).Inc()
	r.analysisDuration.WithLabelValues(kind).Observe(duration)
}

// RecordAnalysisTimeout records an analysis that missed the UI deadline.
func (r *Registry) RecordAnalysisTimeout(kind string) {
	r.analysisTimeouts.WithLabelValues(kind).Inc()
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

// RecordNotification records a publish attempt.
func (r *Registry) RecordNotification(notifier, status string) {
	r.notificationsSent.WithLabelValues(notifier, status).Inc()
}

// SetCatalogSize sets the catalog size.
func (r *Registry) SetCatalogSize(size int) {
	r.catalogPairs.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
