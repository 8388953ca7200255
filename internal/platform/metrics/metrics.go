package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	AuthorizeOutcomes *prometheus.CounterVec
	CodesIssued       prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuthorizeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "authd_authorize_outcomes_total",
			Help: "Authorization decisions by terminal outcome",
		}, []string{"outcome"}),
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "authd_codes_issued_total",
			Help: "Total number of authorization codes issued",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authd_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
	}
}

// ObserveRequest records the latency of a handled request.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// IncAuthorizeOutcome counts one terminal decision outcome.
func (m *Metrics) IncAuthorizeOutcome(outcome string) {
	m.AuthorizeOutcomes.WithLabelValues(outcome).Inc()
}

// IncCodesIssued counts one successfully issued authorization code.
func (m *Metrics) IncCodesIssued() {
	m.CodesIssued.Inc()
}
