// Package metrics exposes balance engine counters to Prometheus.
// Every method accepts a nil receiver so callers can run without metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unitbalance"

// Metrics holds the engine collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	applied      *prometheus.CounterVec
	reloads      *prometheus.CounterVec
	messagesSent prometheus.Counter
	sendFailures prometheus.Counter
	propagated   prometheus.Counter
	generation   prometheus.Gauge
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.applied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apply",
			Name:      "overrides_total",
			Help:      "Overrides written, by applier",
		},
		[]string{"applier"},
	)
	m.reloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reloads, by kind (reload, default, revert)",
		},
		[]string{"kind"},
	)
	m.messagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "messages_sent_total",
		Help:      "Override messages delivered to observers",
	})
	m.sendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "send_failures_total",
		Help:      "Override messages that failed to send",
	})
	m.propagated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "propagated_instances_total",
		Help:      "Live instances updated from templates",
	})
	m.generation = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "generation",
		Help:      "Current balance generation",
	})

	m.registry.MustRegister(m.applied, m.reloads, m.messagesSent, m.sendFailures, m.propagated, m.generation)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

func (m *Metrics) SendFailed() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}

// Applied adds n writes for the named applier.
func (m *Metrics) Applied(applier string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.applied.WithLabelValues(applier).Add(float64(n))
}

func (m *Metrics) Reloaded(kind string) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(kind).Inc()
}

func (m *Metrics) Propagated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.propagated.Add(float64(n))
}

func (m *Metrics) SetGeneration(g uint64) {
	if m == nil {
		return
	}
	m.generation.Set(float64(g))
}
