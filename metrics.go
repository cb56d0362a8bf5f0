package authkit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics publishes decision and registration counters. Enabled through
// WithMetrics; nil otherwise.
type metrics struct {
	decisions     *prometheus.CounterVec
	registrations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "decisions_total",
			Help:      "Access decisions, labeled by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "registrations_total",
			Help:      "Registrations into the authority, labeled by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.decisions, m.registrations)
	return m
}
