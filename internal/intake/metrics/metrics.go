package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the submission intake module.
type Metrics struct {
	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec
	AnonymousVisits     prometheus.Counter
	SubmitDuration      prometheus.Histogram
}

// New creates a Metrics instance with all intake module metrics registered.
func New() *Metrics {
	return &Metrics{
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_submissions_accepted_total",
			Help: "Total number of accepted check-in submissions",
		}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_submissions_rejected_total",
			Help: "Total number of rejected check-in submissions by precondition",
		}, []string{"reason"}),
		AnonymousVisits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_anonymous_visits_total",
			Help: "Total number of visits accepted without a resolved visitor identity",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_submit_duration_seconds",
			Help:    "Duration of check-in submissions end to end",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAccepted records an accepted submission.
func (m *Metrics) IncrementAccepted() {
	m.SubmissionsAccepted.Inc()
}

// IncrementRejected records a rejected submission with the failed precondition.
func (m *Metrics) IncrementRejected(reason string) {
	m.SubmissionsRejected.WithLabelValues(reason).Inc()
}

// IncrementAnonymous records a visit accepted without identity linkage.
func (m *Metrics) IncrementAnonymous() {
	m.AnonymousVisits.Inc()
}

// ObserveSubmit records the duration of a submission.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
