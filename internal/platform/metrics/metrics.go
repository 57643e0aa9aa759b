package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds transport level Prometheus metrics.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	Requests       *prometheus.CounterVec
}

// New registers the HTTP metrics with reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "friendsd_http_request_duration_seconds",
			Help:    "Latency of host API requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "friendsd_http_requests_total",
			Help: "Host API requests by route and status class",
		}, []string{"route", "method", "status"}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, method).Observe(seconds)
	m.Requests.WithLabelValues(route, method, status).Inc()
}
