package metrics

import (
	"strconv"

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

	// Backend metrics
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	// Viewer metrics
	viewLoads      *prometheus.CounterVec
	viewLoadsStale *prometheus.CounterVec
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

	r.upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protrade_upstream_requests_total",
			Help: "Total number of requests sent to the strategy backend",
		},
		[]string{"endpoint", "status"},
	)
	r.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "protrade_upstream_request_duration_seconds",
			Help:    "Strategy backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	r.viewLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protrade_view_loads_total",
			Help: "Total number of viewer loads applied to view state",
		},
		[]string{"viewer", "outcome"},
	)
	r.viewLoadsStale = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protrade_view_loads_stale_total",
			Help: "Viewer loads discarded because a newer load superseded them",
		},
		[]string{"viewer"},
	)

	reg.MustRegister(r.upstreamRequests)
	reg.MustRegister(r.upstreamDuration)
	reg.MustRegister(r.viewLoads)
	reg.MustRegister(r.viewLoadsStale)

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

// ObserveUpstream records one backend call. A status of 0 means the
// request never produced a response.
func (r *Registry) ObserveUpstream(endpoint string, status int, duration float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.upstreamRequests.WithLabelValues(endpoint, label).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(duration)
}

// ObserveLoad records a viewer load that was applied to state.
func (r *Registry) ObserveLoad(viewer, outcome string) {
	r.viewLoads.WithLabelValues(viewer, outcome).Inc()
}

// ObserveStaleLoad records a viewer load dropped as superseded.
func (r *Registry) ObserveStaleLoad(viewer string) {
	r.viewLoadsStale.WithLabelValues(viewer).Inc()
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
