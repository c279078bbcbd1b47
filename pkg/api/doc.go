// Package api contains the HTTP surface of the feedback analyzer: request
// decoding, response writing and the mapping of domain errors to API
// errors.
//
// # Error Mapping
//
// Every failure is returned as
//
//	{"error": {"message": "...", "type": "...", "code": "..."}}
//
// with the status derived from type:
//
//	invalid_request_error  400  bad JSON, missing fields, text out of bounds,
//	                            invalid or duplicate email, short password
//	authentication_error   401  missing or unknown API key, bad login
//	request_too_large      413  body over server.max_body_bytes
//	rate_limit_exceeded    429  too many requests in the sliding window
//	quota_exceeded         429  account request quota spent
//	server_error           500  analysis could not be persisted
//	service_unavailable    503  limits storage unreachable
//	timeout                504  request deadline passed
//
// Rate limit rejections also carry Retry-After; quota rejections do not.
//
// Subpackages:
//   - handlers: one http.Handler per endpoint
//   - middleware: request ID, logging, recovery, CORS, body limit, timeout
//   - types: JSON bodies
package api
