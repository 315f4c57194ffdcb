package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	formSubmissionsTotal      *prometheus.CounterVec
	notificationDispatchTotal *prometheus.CounterVec
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the relay.
func RegisterMetrics() {
	registerOnce.Do(func() {
		formSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Total number of form submissions by outcome.",
		}, []string{"outcome"})

		notificationDispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Per-channel notification dispatch results.",
		}, []string{"channel", "result"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(formSubmissionsTotal, notificationDispatchTotal, httpRequestsTotal, httpLatencySeconds)
	})
}

// FormSubmissions exposes the submission outcome counter.
func FormSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return formSubmissionsTotal
}

// Dispatches exposes the per-channel dispatch result counter.
func Dispatches() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationDispatchTotal
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}
