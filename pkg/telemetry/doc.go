// Package telemetry groups the observability packages of the feedback
// analyzer.
//
// # Components
//
//   - logging: slog setup with API key and credential redaction
//   - metrics: Prometheus collectors for requests, analyses, cache and limits
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(ctx)
//
//	checker := health.New(0)
//	checker.RegisterCheck("storage", health.PingCheck(store))
package telemetry
