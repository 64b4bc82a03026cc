package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the form module.
type Metrics struct {
	FormsCreated       prometheus.Counter
	QRCodesRegenerated prometheus.Counter
	QRLookupDuration   prometheus.Histogram
}

// New creates a Metrics instance with all form module metrics registered.
func New() *Metrics {
	return &Metrics{
		FormsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_forms_created_total",
			Help: "Total number of check-in forms created",
		}),
		QRCodesRegenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_qrcodes_regenerated_total",
			Help: "Total number of QR code regenerations",
		}),
		QRLookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_qr_lookup_duration_seconds",
			Help:    "Duration of QR identifier lookups (check-in critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementFormsCreated records a successful form creation.
func (m *Metrics) IncrementFormsCreated() {
	if m == nil {
		return
	}
	m.FormsCreated.Inc()
}

// IncrementQRCodesRegenerated records a QR regeneration.
func (m *Metrics) IncrementQRCodesRegenerated() {
	if m == nil {
		return
	}
	m.QRCodesRegenerated.Inc()
}

// ObserveQRLookup records the duration of a QR identifier lookup.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveQRLookup(start time.Time) {
	if m == nil {
		return
	}
	m.QRLookupDuration.Observe(time.Since(start).Seconds())
}
