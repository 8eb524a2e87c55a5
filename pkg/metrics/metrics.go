package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Hold protocol metrics
	HoldsTotal    *prometheus.CounterVec
	HoldConflicts *prometheus.CounterVec
	HoldRetries   prometheus.Counter

	// Lifecycle metrics
	BookingsConfirmed prometheus.Counter
	BookingsCancelled prometheus.Counter

	// Expiry sweep metrics
	SweepRuns     prometheus.Counter
	SweepReleased prometheus.Counter
	SweepFailed   prometheus.Counter

	// Availability metrics
	SlotQueryDuration prometheus.Histogram
	StoreFailures     prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HoldsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_total",
			Help:      "Total number of hold attempts by outcome",
		}, []string{"outcome"}),
		HoldConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_conflicts_total",
			Help:      "Hold failures by internal reason",
		}, []string{"reason"}),
		HoldRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_retry_attempts_total",
			Help:      "Transaction retries caused by serialization failures",
		}),
		BookingsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_confirmed_total",
			Help:      "Total number of confirmed bookings",
		}),
		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Total number of cancelled bookings",
		}),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_runs_total",
			Help:      "Total number of expiry sweep executions",
		}),
		SweepReleased: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_released_total",
			Help:      "Provisional holds released by expiry sweeps",
		}),
		SweepFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_failures_total",
			Help:      "Total number of failed expiry sweeps",
		}),
		SlotQueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slot_query_duration_seconds",
			Help:      "Time spent computing availability slots",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Booking store faults observed by slot queries",
		}),
	}
}

// NewForTest creates unregistered metrics for use in unit tests.
func NewForTest() *Metrics {
	return &Metrics{
		HoldsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holds_total",
		}, []string{"outcome"}),
		HoldConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hold_conflicts_total",
		}, []string{"reason"}),
		HoldRetries:       prometheus.NewCounter(prometheus.CounterOpts{Name: "hold_retry_attempts_total"}),
		BookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{Name: "bookings_confirmed_total"}),
		BookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{Name: "bookings_cancelled_total"}),
		SweepRuns:         prometheus.NewCounter(prometheus.CounterOpts{Name: "expiry_sweep_runs_total"}),
		SweepReleased:     prometheus.NewCounter(prometheus.CounterOpts{Name: "expiry_sweep_released_total"}),
		SweepFailed:       prometheus.NewCounter(prometheus.CounterOpts{Name: "expiry_sweep_failures_total"}),
		SlotQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "slot_query_duration_seconds"}),
		StoreFailures:     prometheus.NewCounter(prometheus.CounterOpts{Name: "store_failures_total"}),
	}
}
