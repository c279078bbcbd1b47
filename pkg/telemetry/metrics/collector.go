package metrics

import (
	"time"

	"mercator-hq/feedback/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the Prometheus registry and every metric the service
// exports. All Record methods are safe on a nil *Collector, so components
// can be constructed without metrics in tests.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	providerMetrics *ProviderMetrics
	cacheMetrics    *CacheMetrics
	limitMetrics    *LimitMetrics
	analysisMetrics *AnalysisMetrics
}

// NewCollector creates a collector registered against registry. If registry
// is nil a fresh one is created with the Go and process collectors attached.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		requestMetrics:  NewRequestMetrics(cfg.Namespace, registry),
		providerMetrics: NewProviderMetrics(cfg.Namespace, registry),
		cacheMetrics:    NewCacheMetrics(cfg.Namespace, registry),
		limitMetrics:    NewLimitMetrics(cfg.Namespace, registry),
		analysisMetrics: NewAnalysisMetrics(cfg.Namespace, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordHTTPRequest records a served HTTP request.
//
// Parameters:
//   - route: Route pattern (e.g., "POST /api/analyze"), never the raw URL
//   - status: HTTP status code
//   - duration: Time spent serving the request
func (c *Collector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordRequest(route, status, duration)
}

// RecordProviderCall records the latency and outcome of an external analyzer call.
func (c *Collector) RecordProviderCall(provider, model string, latency time.Duration, err error) {
	if !c.enabled() {
		return
	}

	c.providerMetrics.RecordLatency(provider, model, latency.Seconds())
	if err != nil {
		c.providerMetrics.RecordError(provider, ErrorType(err))
	}
}

// UpdateProviderHealth updates the health gauge of a provider.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}

	c.providerMetrics.UpdateHealth(provider, healthy)
}

// RecordCacheHit records a result cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a result cache miss. Expired entries count as misses.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records entries dropped for capacity or expiry.
func (c *Collector) RecordCacheEviction(cacheName, reason string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordEviction(cacheName, reason)
}

// UpdateCacheSize updates the current number of entries in a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// RecordRateLimitCheck records a limiter decision for the given backend.
func (c *Collector) RecordRateLimitCheck(backend string, allowed bool) {
	if !c.enabled() {
		return
	}

	c.limitMetrics.RecordRateLimitCheck(backend, allowed)
}

// UpdateTrackedIdentities sets how many identities the limiter holds windows for.
func (c *Collector) UpdateTrackedIdentities(count int) {
	if !c.enabled() {
		return
	}

	c.limitMetrics.UpdateTrackedIdentities(count)
}

// RecordQuotaCheck records a quota gate decision ("admitted", "exceeded",
// "unauthenticated", "error").
func (c *Collector) RecordQuotaCheck(result string) {
	if !c.enabled() {
		return
	}

	c.limitMetrics.RecordQuotaCheck(result)
}

// RecordAnalysis records a completed analysis by outcome
// ("parsed", "fallback", "cache_hit").
func (c *Collector) RecordAnalysis(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.analysisMetrics.RecordAnalysis(outcome, duration)
}

// RecordAnalysisFailure records an analysis that could not be completed
// ("invalid_input", "persistence", "quota").
func (c *Collector) RecordAnalysisFailure(reason string) {
	if !c.enabled() {
		return
	}

	c.analysisMetrics.RecordFailure(reason)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
