package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds each request with a context deadline. The
// handler keeps ownership of the response: blocking calls observe the
// deadline and return context.DeadlineExceeded, which api.HandleError maps
// to 504. The analysis call has its own shorter timeout and falls back
// before this deadline is reached.
//
// Example usage:
//
//	handler = TimeoutMiddleware(45 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
