package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// with an internal_error body. The panic and stack trace are logged; the
// client sees no internal details.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				errResp := types.NewServerError(
					"An internal error occurred. Please try again later.",
				)
				_ = api.WriteErrorResponse(w, errResp)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
