package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the epinet collectors.
type Metrics struct {
	registry *prometheus.Registry

	GraphsGenerated prometheus.Counter
	GraphNodes      prometheus.Histogram
	Steps           prometheus.Counter
	Lockdowns       prometheus.Counter
	Terminated      prometheus.Counter
	Transitions     *prometheus.CounterVec
	Agents          *prometheus.GaugeVec
	StepDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GraphsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epinet_graphs_generated_total",
			Help: "Total number of contact graphs generated",
		}),
		GraphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "epinet_graph_nodes",
			Help:    "Population size of generated graphs",
			Buckets: prometheus.ExponentialBuckets(200, 2, 8),
		}),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epinet_steps_total",
			Help: "Total number of simulated days",
		}),
		Lockdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epinet_lockdowns_total",
			Help: "Total number of lockdowns imposed",
		}),
		Terminated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epinet_simulations_terminated_total",
			Help: "Total number of simulations that reached termination",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epinet_transitions_total",
			Help: "Agent state transitions by kind",
		}, []string{"kind"}),
		Agents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "epinet_agents",
			Help: "Agents per state in the most recently stepped simulation",
		}, []string{"state"}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "epinet_step_duration_seconds",
			Help:    "Duration of a single simulated day",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.GraphsGenerated,
		m.GraphNodes,
		m.Steps,
		m.Lockdowns,
		m.Terminated,
		m.Transitions,
		m.Agents,
		m.StepDuration,
	)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphGenerated: func(_ context.Context, e *domain.GraphEvent) {
			m.GraphsGenerated.Inc()
			m.GraphNodes.Observe(float64(e.Nodes))
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.Inc()
			m.StepDuration.Observe(e.Duration.Seconds())

			tr := e.Transitions
			m.Transitions.WithLabelValues("exposed").Add(float64(tr.Exposed))
			m.Transitions.WithLabelValues("infectious").Add(float64(tr.Infectious))
			m.Transitions.WithLabelValues("quarantined").Add(float64(tr.Quarantined))
			m.Transitions.WithLabelValues("recovered").Add(float64(tr.Recovered))
			m.Transitions.WithLabelValues("released").Add(float64(tr.Released))

			for _, s := range domain.States {
				m.Agents.WithLabelValues(s.String()).Set(float64(e.Counts.Get(s)))
			}
		},
		OnLockdown: func(context.Context, *domain.PolicyEvent) {
			m.Lockdowns.Inc()
		},
		OnTerminate: func(context.Context, *domain.PolicyEvent) {
			m.Terminated.Inc()
		},
	}
}
