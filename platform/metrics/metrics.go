// Package metrics exposes prometheus instrumentation for the follow-up engine.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	Decisions        *prometheus.CounterVec
	ArcMutations     *prometheus.CounterVec
	MutationFailures *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	LeadsSkipped     prometheus.Counter
}

// New registers and returns the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_decisions_total",
			Help: "Follow-up decisions by outcome and the gate that decided them.",
		}, []string{"outcome", "gate"}),
		ArcMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_arc_mutations_total",
			Help: "Escalation arc mutations applied, by operation.",
		}, []string{"operation"}),
		MutationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_arc_mutation_failures_total",
			Help: "Escalation arc mutations that failed, by operation and kind.",
		}, []string{"operation", "kind"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "followup_cycle_duration_seconds",
			Help:    "Duration of full evaluation cycles.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		LeadsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "followup_leads_skipped_total",
			Help: "Leads skipped because another evaluation held the lock.",
		}),
	}
}

// Handler returns an HTTP handler serving the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
