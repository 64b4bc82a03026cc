package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts limiter decisions on the public check-in path.
type Metrics struct {
	Throttled  prometheus.Counter
	CheckFault prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Throttled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_ratelimit_throttled_total",
			Help: "Requests rejected with 429 by the check-in rate limiter.",
		}),
		CheckFault: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_ratelimit_check_faults_total",
			Help: "Limiter store errors that caused a fail-open pass.",
		}),
	}
}
