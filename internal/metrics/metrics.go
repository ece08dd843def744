// Package metrics holds the prometheus collectors for the RSVP flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	lookups   *prometheus.CounterVec
	views     *prometheus.CounterVec
	responses *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer creates unregistered
// collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "rsvp",
			Name:      "lookups_total",
			Help:      "Guest lookups by outcome.",
		}, []string{"outcome"}),
		views: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "rsvp",
			Name:      "views_total",
			Help:      "Workflow screens handed to the presentation layer.",
		}, []string{"view"}),
		responses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "rsvp",
			Name:      "responses_total",
			Help:      "Completed responses by group status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveView(view string) {
	if m == nil {
		return
	}
	m.views.WithLabelValues(view).Inc()
}

func (m *Metrics) ObserveResponse(status string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(status).Inc()
}
