package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics tracks orchestrator outcomes.
//
// Metrics:
//   - feedback_analysis_total: Completed analyses by outcome
//   - feedback_analysis_duration_seconds: End-to-end analysis duration by outcome
//   - feedback_analysis_failures_total: Requests that failed after admission
type AnalysisMetrics struct {
	analysesTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	failuresTotal *prometheus.CounterVec
}

// NewAnalysisMetrics creates and registers analysis metrics with the provided registry.
func NewAnalysisMetrics(namespace string, registry *prometheus.Registry) *AnalysisMetrics {
	am := &AnalysisMetrics{
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_total",
				Help:      "Total number of completed analyses by outcome",
			},
			[]string{"outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of analyses in seconds",
				Buckets:   []float64{0.005, 0.05, 0.25, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_failures_total",
				Help:      "Total number of analyses that failed",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(am.analysesTotal, am.duration, am.failuresTotal)

	return am
}

// RecordAnalysis records a completed analysis.
func (am *AnalysisMetrics) RecordAnalysis(outcome string, duration time.Duration) {
	am.analysesTotal.WithLabelValues(outcome).Inc()
	am.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFailure records a failed analysis.
func (am *AnalysisMetrics) RecordFailure(reason string) {
	am.failuresTotal.WithLabelValues(reason).Inc()
}
