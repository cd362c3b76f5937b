package metrics

import "github.com/prometheus/client_golang/prometheus"

// RateLimitMetrics counts rejected requests per policy.
type RateLimitMetrics struct {
	rejected *prometheus.CounterVec
}

func NewRateLimitMetrics(reg prometheus.Registerer) *RateLimitMetrics {
	if reg == nil {
		return &RateLimitMetrics{}
	}
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Requests rejected by the fixed-window rate limiter.",
	}, []string{"policy"})
	reg.MustRegister(rejected)
	return &RateLimitMetrics{rejected: rejected}
}

func (m *RateLimitMetrics) IncRejected(policy string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(policy)).Inc()
}
