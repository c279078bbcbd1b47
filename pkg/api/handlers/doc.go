// Package handlers implements one http.Handler per API endpoint.
//
// Authenticated handlers read the account placed in the request context by
// auth.APIKeyMiddleware and fail with 401 when it is absent. All failures
// go through api.WriteError.
//
//	POST /api/analyze           AnalyzeHandler
//	GET  /api/analytics         AnalyticsHandler
//	GET  /api/analyses/export   ExportHandler
//	GET  /api/user/profile      ProfileHandler
//	POST /api/auth/register     RegisterHandler
//	POST /api/auth/login        LoginHandler
//	GET  /api/status            StatusHandler
package handlers
