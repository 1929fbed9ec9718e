package controlplane

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fentz26/breakroom/internal/models"
)

// Metrics holds the coordinator's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	messages *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	agents   *prometheus.GaugeVec
	failures *prometheus.CounterVec
	dropped  prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakroom_messages_total",
				Help: "Number of handled messages by classified intent.",
			},
			[]string{"intent"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakroom_outcomes_total",
				Help: "Number of handled messages by outcome.",
			},
			[]string{"outcome"},
		),
		agents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "breakroom_agents",
				Help: "Number of agents currently in each tracked state.",
			},
			[]string{"state"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakroom_side_effect_failures_total",
				Help: "Number of failed post-commit side effects by job.",
			},
			[]string{"job"},
		),
		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "breakroom_side_effects_dropped_total",
				Help: "Number of side effects dropped because the queue was full.",
			},
		),
	}
	m.registry.MustRegister(m.messages, m.outcomes, m.agents, m.failures, m.dropped)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveResult counts one handled message.
func (m *Metrics) ObserveResult(res models.Result) {
	m.messages.WithLabelValues(string(res.Intent.Kind)).Inc()
	m.outcomes.WithLabelValues(string(res.Outcome)).Inc()
}

// SetAgents updates the per-state gauges from snap.
func (m *Metrics) SetAgents(snap models.Snapshot) {
	m.agents.WithLabelValues(string(models.StateProposed)).Set(float64(len(snap.Proposed)))
	m.agents.WithLabelValues(string(models.StateBreak)).Set(float64(snap.Break.Count))
	m.agents.WithLabelValues(string(models.StateAdhoc)).Set(float64(snap.Adhoc.Count))
	m.agents.WithLabelValues(string(models.StateOffline)).Set(float64(snap.Offline.Count))
}

// JobFailed implements dispatch.Observer.
func (m *Metrics) JobFailed(name string) {
	m.failures.WithLabelValues(name).Inc()
}

// JobDropped implements dispatch.Observer.
func (m *Metrics) JobDropped(string) {
	m.dropped.Inc()
}
