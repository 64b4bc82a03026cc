package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the visit module.
type Metrics struct {
	Transitions         *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
	TransitionDuration  prometheus.Histogram
}

// New creates a Metrics instance with all visit module metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_visit_transitions_total",
			Help: "Total number of successful visit status transitions",
		}, []string{"action"}),
		RejectedTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_visit_transitions_rejected_total",
			Help: "Total number of visit transitions rejected by the status precondition",
		}, []string{"action"}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_visit_transition_duration_seconds",
			Help:    "Duration of visit status transitions including the row lock",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransition records a successful transition for the given action.
func (m *Metrics) IncrementTransition(action string) {
	m.Transitions.WithLabelValues(action).Inc()
}

// IncrementRejected records a transition rejected by its status precondition.
func (m *Metrics) IncrementRejected(action string) {
	m.RejectedTransitions.WithLabelValues(action).Inc()
}

// ObserveTransition records the duration of a transition.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
