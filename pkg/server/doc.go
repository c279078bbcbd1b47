// Package server provides the HTTP server of the feedback analyzer.
//
// This package ties the handlers, middleware and health endpoints together
// and owns the server lifecycle: start, signal handling and graceful
// shutdown.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Analyzer:  analysisService,
//	    Analytics: analyticsService,
//	    Accounts:  accounts,
//	    Enforcer:  enforcer,
//	    Health:    checker,
//	    Metrics:   collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Start returns after SIGINT, SIGTERM, cancellation of ctx or a call to
// Stop. In-flight requests get server.shutdown_timeout to finish before
// connections are closed.
//
// # Routes
//
// Public:
//
//   - GET  /api/status          - service banner
//   - POST /api/auth/register   - create an account, returns its API key
//   - POST /api/auth/login      - exchange email and password for the API key
//   - GET  /health, /ready, /version
//   - GET  /metrics             - when telemetry.metrics.enabled
//
// Authenticated by API key (X-API-Key or Authorization: Bearer), rate
// limited and quota checked:
//
//   - POST /api/analyze         - analyze one piece of feedback
//   - GET  /api/analytics       - per-account aggregates
//   - GET  /api/analyses/export - analysis history as CSV or JSON
//   - GET  /api/user/profile    - account view
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: turns panics into 500 responses
//  2. Tracing: starts a server span
//  3. RequestID: assigns X-Request-ID
//  4. Logging: one line per request
//  5. CORS
//  6. BodyLimit: rejects bodies over server.max_body_bytes with 413
//  7. Timeout: request context deadline
package server
