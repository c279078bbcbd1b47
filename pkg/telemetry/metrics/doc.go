// Package metrics provides Prometheus metrics for the feedback analyzer.
//
// # Metrics Categories
//
//   - Request Metrics: HTTP request count and duration by route and status
//   - Provider Metrics: External analyzer latency, errors, and health
//   - Cache Metrics: Result cache hits, misses, evictions, and size
//   - Limit Metrics: Rate limiter and quota gate decisions
//   - Analysis Metrics: Completed analyses by outcome and failures by reason
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//
//	collector.RecordAnalysis("cache_hit", 3*time.Millisecond)
//	collector.RecordRateLimitCheck("memory", false)
//
//	mux.Handle("/metrics", collector.Handler())
//
// Every Record method is a no-op on a nil *Collector or when metrics are
// disabled, so components accept an optional collector.
package metrics
