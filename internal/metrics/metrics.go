// Package metrics exposes the server's Prometheus instrumentation surface,
// grounded on the counter/gauge shape the dantte-lp-gobfd example wires
// through its command stack.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	ActiveSessions    prometheus.Gauge
	QueueDepth        prometheus.Gauge
	RegistrationsTotal prometheus.Counter
	RefusalsTotal     prometheus.Counter
}

// New creates and registers the server's collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pacd",
			Name:      "active_sessions",
			Help:      "Number of games currently in progress.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pacd",
			Name:      "registration_queue_depth",
			Help:      "Number of registrations waiting for a free worker.",
		}),
		RegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pacd",
			Name:      "registrations_total",
			Help:      "Total number of accepted client registrations.",
		}),
		RefusalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pacd",
			Name:      "registration_refusals_total",
			Help:      "Total number of registrations refused because the queue was full.",
		}),
	}
	reg.MustRegister(m.ActiveSessions, m.QueueDepth, m.RegistrationsTotal, m.RefusalsTotal)
	return m
}
