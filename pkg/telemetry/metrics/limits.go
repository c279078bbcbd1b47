package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LimitMetrics tracks admission decisions.
//
// Metrics:
//   - feedback_limits_rate_limit_checks_total: Limiter decisions by backend and result
//   - feedback_limits_tracked_identities: Identities with a live window
//   - feedback_limits_quota_checks_total: Quota gate decisions by result
type LimitMetrics struct {
	rateLimitChecks   *prometheus.CounterVec
	trackedIdentities prometheus.Gauge
	quotaChecks       *prometheus.CounterVec
}

// NewLimitMetrics creates and registers limit metrics with the provided registry.
func NewLimitMetrics(namespace string, registry *prometheus.Registry) *LimitMetrics {
	lm := &LimitMetrics{
		rateLimitChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "limits",
				Name:      "rate_limit_checks_total",
				Help:      "Total number of rate limit checks performed",
			},
			[]string{"backend", "result"},
		),

		trackedIdentities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "limits",
				Name:      "tracked_identities",
				Help:      "Number of identities with a live rate window",
			},
		),

		quotaChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "limits",
				Name:      "quota_checks_total",
				Help:      "Total number of quota gate checks performed",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(lm.rateLimitChecks, lm.trackedIdentities, lm.quotaChecks)

	return lm
}

// RecordRateLimitCheck records a limiter decision.
func (lm *LimitMetrics) RecordRateLimitCheck(backend string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "blocked"
	}
	lm.rateLimitChecks.WithLabelValues(backend, result).Inc()
}

// UpdateTrackedIdentities sets the tracked identity gauge.
func (lm *LimitMetrics) UpdateTrackedIdentities(count int) {
	lm.trackedIdentities.Set(float64(count))
}

// RecordQuotaCheck records a quota gate decision.
func (lm *LimitMetrics) RecordQuotaCheck(result string) {
	lm.quotaChecks.WithLabelValues(result).Inc()
}
