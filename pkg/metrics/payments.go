package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics tracks finalization outcomes and gateway latency.
type PaymentMetrics struct {
	finalizations *prometheus.CounterVec
	gateway       *prometheus.HistogramVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	finalizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_finalization_total",
		Help: "Payment finalization attempts by trigger source and outcome.",
	}, []string{"source", "outcome"})
	gateway := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_duration_seconds",
		Help:    "Latency of payment gateway API calls.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation", "result"})
	reg.MustRegister(finalizations, gateway)
	return &PaymentMetrics{finalizations: finalizations, gateway: gateway}
}

// IncFinalization counts one finalization attempt.
func (m *PaymentMetrics) IncFinalization(source, outcome string) {
	if m == nil || m.finalizations == nil {
		return
	}
	m.finalizations.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

// ObserveGateway records a gateway call duration; result is "ok" or "error".
func (m *PaymentMetrics) ObserveGateway(operation string, duration time.Duration, err error) {
	if m == nil || m.gateway == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gateway.WithLabelValues(normalizeLabel(operation), result).Observe(duration.Seconds())
}
