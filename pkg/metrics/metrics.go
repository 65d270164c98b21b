package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine metrics
type Metrics struct {
	// Adjudication metrics
	DecisionsTotal      *prometheus.CounterVec
	AdjudicationLatency prometheus.Histogram

	// Registry lookup metrics
	RegistryLookups       *prometheus.CounterVec
	RegistryLookupLatency prometheus.Histogram
	RegistryRetries       prometheus.Counter

	// Calendar metrics
	SlotsBooked         prometheus.Counter
	SlotClaimConflicts  prometheus.Counter
	SchedulingExhausted prometheus.Counter
}

// NewMetrics creates and registers all engine metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "decisions_total",
			Help:      "Total adjudication decisions by outcome",
		}, []string{"outcome"}),
		AdjudicationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "adjudication_duration_seconds",
			Help:      "Time spent adjudicating a referral end to end",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		RegistryLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_lookups_total",
			Help:      "Total provider registry lookups by result",
		}, []string{"result"}),
		RegistryLookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_lookup_duration_seconds",
			Help:      "Duration of provider registry lookups",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		RegistryRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_retry_attempts_total",
			Help:      "Total retry attempts against the provider registry",
		}),

		SlotsBooked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calendar_slots_booked_total",
			Help:      "Total calendar slots booked",
		}),
		SlotClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calendar_slot_claim_conflicts_total",
			Help:      "Slot claims lost to a concurrent reservation",
		}),
		SchedulingExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calendar_search_exhausted_total",
			Help:      "Reservations that found no free slot within the horizon",
		}),
	}
}
