package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/limits/enforcement"
	"mercator-hq/feedback/pkg/storage"
)

// APIKeySource defines where to extract API keys from
type APIKeySource struct {
	Type   string // header, query
	Name   string // Header name or query param
	Scheme string // "Bearer", etc. (optional)
}

// DefaultSources reads the credential from header (normally X-API-Key),
// falling back to "Authorization: Bearer <key>".
func DefaultSources(header string) []APIKeySource {
	if header == "" {
		header = "X-API-Key"
	}
	return []APIKeySource{
		{Type: "header", Name: header},
		{Type: "header", Name: "Authorization", Scheme: "Bearer"},
	}
}

// Enforcer admits a request carrying a credential.
// *enforcement.Enforcer implements it.
type Enforcer interface {
	Enforce(ctx context.Context, credential string) (*enforcement.Result, error)
}

// ErrorHandler writes an error response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// APIKeyMiddleware authenticates requests by API key and runs the
// admission checks (quota gate, then rate limiter) before the handler.
type APIKeyMiddleware struct {
	enforcer Enforcer
	sources  []APIKeySource
	onError  ErrorHandler
}

// NewAPIKeyMiddleware creates the middleware. onError renders rejections.
func NewAPIKeyMiddleware(enforcer Enforcer, sources []APIKeySource, onError ErrorHandler) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		enforcer: enforcer,
		sources:  sources,
		onError:  onError,
	}
}

// Handle wraps an HTTP handler with authentication and admission.
//
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset are set
// whenever the rate limiter ran, and Retry-After on rejections that carry
// one.
func (m *APIKeyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := ExtractAPIKey(r, m.sources)

		result, err := m.enforcer.Enforce(r.Context(), credential)
		if result != nil {
			SetRateLimitHeaders(w.Header(), result.RateLimit)
		}
		if err != nil {
			var le *limits.LimitError
			if errors.As(err, &le) && le.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(le.RetryAfter)))
			}
			slog.DebugContext(r.Context(), "request not admitted",
				"error", err,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			m.onError(w, r, err)
			return
		}

		ctx := WithAccount(r.Context(), result.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractAPIKey returns the first credential found in sources, or "".
func ExtractAPIKey(r *http.Request, sources []APIKeySource) string {
	for _, source := range sources {
		switch source.Type {
		case "header":
			value := strings.TrimSpace(r.Header.Get(source.Name))
			if value == "" {
				continue
			}
			if source.Scheme == "" {
				return value
			}
			prefix := source.Scheme + " "
			if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
				return strings.TrimSpace(value[len(prefix):])
			}

		case "query":
			if value := r.URL.Query().Get(source.Name); value != "" {
				return value
			}
		}
	}

	return ""
}

// SetRateLimitHeaders writes the X-RateLimit-* headers for info. Nothing is
// written when the limiter did not run.
func SetRateLimitHeaders(h http.Header, info limits.RateLimitInfo) {
	if info.Limit == 0 {
		return
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset.Unix(), 10))
}

// retryAfterSeconds rounds up so clients never retry too early.
func retryAfterSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	return max(s, 1)
}

type contextKey string

// #nosec G101 - This is a context key constant, not a credential
const accountKey contextKey = "account"

// WithAccount returns a context carrying the authenticated account.
func WithAccount(ctx context.Context, account *storage.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the account set by APIKeyMiddleware.
func AccountFromContext(ctx context.Context) (*storage.Account, bool) {
	account, ok := ctx.Value(accountKey).(*storage.Account)
	return account, ok && account != nil
}
