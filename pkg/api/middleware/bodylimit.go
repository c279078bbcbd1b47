package middleware

import "net/http"

// DefaultMaxBodyBytes is the request body limit when none is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimitMiddleware caps request bodies at maxBytes. Reads past the cap
// fail with *http.MaxBytesError, which api.DecodeJSON reports as 413.
func BodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
