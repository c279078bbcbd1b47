package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks calls to the external analyzer.
//
// Metrics:
//   - feedback_provider_health: Provider health status (1=healthy, 0=unhealthy)
//   - feedback_provider_latency_seconds: Analyzer call latency
//   - feedback_provider_errors_total: Analyzer errors by type
//   - feedback_provider_requests_total: Total calls to each provider
type ProviderMetrics struct {
	health   *prometheus.GaugeVec
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(namespace string, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_latency_seconds",
				Help:      "External analyzer call latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of external analyzer errors by type",
			},
			[]string{"provider", "error_type"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of calls to each provider",
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(pm.health, pm.latency, pm.errors, pm.requests)

	return pm
}

// UpdateHealth sets the health gauge (1=healthy, 0=unhealthy).
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(provider).Set(value)
}

// RecordLatency records one call and its latency.
func (pm *ProviderMetrics) RecordLatency(provider, model string, latencySeconds float64) {
	pm.requests.WithLabelValues(provider, model).Inc()
	pm.latency.WithLabelValues(provider, model).Observe(latencySeconds)
}

// RecordError records an error from a provider.
//
// Common error types:
//   - "timeout": Call exceeded the analysis timeout
//   - "canceled": Caller went away
//   - "rate_limit", "auth", "server_error", "client_error": Provider status classes
//   - "error": Anything else
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}

// typedError is implemented by provider errors that know their class.
type typedError interface {
	ErrorType() string
}

// ErrorType maps an analyzer error to a low-cardinality label.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var te typedError
	if errors.As(err, &te) {
		return te.ErrorType()
	}
	return "error"
}
