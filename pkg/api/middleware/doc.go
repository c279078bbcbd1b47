// Package middleware provides the HTTP middleware chain of the API server.
//
// Order, outermost first:
//
//	RecoveryMiddleware      panics become 500 internal_error
//	tracing.HTTPMiddleware  server span per request
//	RequestIDMiddleware     X-Request-ID in context and response
//	LoggingMiddleware       one log line per request
//	CORSMiddleware          CORS headers, preflight answered here
//	BodyLimitMiddleware     request body cap
//	TimeoutMiddleware       request context deadline
//
// InstrumentRoute is applied per route so metrics are labelled by mux
// pattern.
package middleware
