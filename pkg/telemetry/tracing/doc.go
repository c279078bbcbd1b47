// Package tracing provides OpenTelemetry tracing for the feedback analyzer.
//
// Spans are exported over OTLP gRPC when telemetry.tracing.enabled is set.
// Packages start spans with the package-level Start, which uses the global
// provider; New installs that provider, so instrumented code needs no
// reference to the Tracer and runs against a noop provider in tests.
//
// Span names used by the service:
//   - "<METHOD> <path>": one server span per HTTP request (HTTPMiddleware)
//   - "analysis.analyze": one analysis, from validation to persistence
//   - "provider.complete": the external model call on a cache miss
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracing.Start(ctx, "analysis.analyze")
//	defer span.End()
//	tracing.SetCacheAttributes(span, hit, fingerprint)
package tracing
