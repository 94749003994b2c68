package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the confirmation workflow.
type Metrics struct {
	Granted      prometheus.Counter
	Revoked      prometheus.Counter
	Invalidated  prometheus.Counter
	ListDuration prometheus.Histogram
}

// New creates and registers all confirmation metrics.
func New() *Metrics {
	return &Metrics{
		Granted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_confirmations_granted_total",
			Help: "Total number of referee game confirmations recorded",
		}),
		Revoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_confirmations_revoked_total",
			Help: "Total number of referee game confirmations revoked by the referee",
		}),
		Invalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arbiter_confirmations_invalidated_total",
			Help: "Total number of confirmations invalidated by fixture changes",
		}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbiter_assigned_games_list_duration_seconds",
			Help:    "Duration of assigned-games listings including enrichment",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncGranted increments the granted counter by n.
func (m *Metrics) IncGranted(n int) {
	if m != nil {
		m.Granted.Add(float64(n))
	}
}

// IncRevoked increments the revoked counter by n.
func (m *Metrics) IncRevoked(n int) {
	if m != nil {
		m.Revoked.Add(float64(n))
	}
}

// IncInvalidated increments the invalidated counter by n.
func (m *Metrics) IncInvalidated(n int) {
	if m != nil {
		m.Invalidated.Add(float64(n))
	}
}

// ObserveListDuration records one listing duration in seconds.
func (m *Metrics) ObserveListDuration(seconds float64) {
	if m != nil {
		m.ListDuration.Observe(seconds)
	}
}
