package limiter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives the outcome of every limited call.
type Metrics interface {
	Allowed(limiter string)
	Waited(limiter string, d time.Duration)
	Rejected(limiter string)
}

// noopMetrics keeps the hot path free of nil checks.
type noopMetrics struct{}

func (noopMetrics) Allowed(string)               {}
func (noopMetrics) Waited(string, time.Duration) {}
func (noopMetrics) Rejected(string)              {}

// PrometheusMetrics exports limiter outcomes as Prometheus collectors.
type PrometheusMetrics struct {
	calls *prometheus.CounterVec
	waits *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the limiter collectors on reg, or on
// the default registerer when reg is nil. One instance is meant to be
// shared by every limiter in a process; the limiter name is a label.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := PrometheusMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pacer_limiter_calls_total",
				Help: "Calls seen by a limiter, by result (allowed, waited, rejected)",
			},
			[]string{"limiter", "result"},
		),
		waits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pacer_limiter_wait_seconds",
				Help:    "Time calls spent waiting for the next interval",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"limiter"},
		),
	}

	for _, c := range []prometheus.Collector{m.calls, m.waits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

func (m *PrometheusMetrics) Allowed(limiter string) {
	m.calls.WithLabelValues(limiter, "allowed").Inc()
}

func (m *PrometheusMetrics) Waited(limiter string, d time.Duration) {
	m.calls.WithLabelValues(limiter, "waited").Inc()
	m.waits.WithLabelValues(limiter).Observe(d.Seconds())
}

func (m *PrometheusMetrics) Rejected(limiter string) {
	m.calls.WithLabelValues(limiter, "rejected").Inc()
}
