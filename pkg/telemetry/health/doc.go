// Package health provides the liveness, readiness and version endpoints.
//
// # Endpoints
//
//   - GET /health: liveness, always 200 while the process runs
//   - GET /ready: readiness, runs every registered check
//   - GET /version: build information
//
// # Checks
//
// Critical checks (storage) make /ready return 503 when they fail.
// Optional checks (providers, redis cache) only mark the service degraded,
// since analyses still complete with a fallback result.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("storage", health.PingCheck(store))
//	checker.RegisterOptionalCheck("providers", health.ProviderCheck(manager))
//	health.Register(mux, checker, version, commit, buildTime)
package health
