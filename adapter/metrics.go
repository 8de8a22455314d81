package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the dispatcher.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the dispatcher instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addin_dispatch_total",
			Help: "Dispatched invocations by interaction mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "addin_dispatch_duration_seconds",
			Help:    "Wall time of dispatched invocations by interaction mode.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
	}
}

func (m *Metrics) observe(mode, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(seconds)
}
