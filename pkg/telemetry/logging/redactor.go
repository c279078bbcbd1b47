package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials and email addresses in log attributes.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and its replacement function.
type redactPattern struct {
	name    string
	regex   *regexp.Regexp
	replace func(string) string
}

// Pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternProviderKey = "provider_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternPassword    = "password"
)

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "x-api-key",
	"private_key",
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{
				// Account keys issued by this service
				name:    PatternAPIKey,
				regex:   regexp.MustCompile(`sk_[0-9a-f]{8,}`),
				replace: RedactAPIKey,
			},
			{
				// Upstream provider keys (sk-..., sk-ant-...)
				name:    PatternProviderKey,
				regex:   regexp.MustCompile(`sk-[A-Za-z0-9_\-]{8,}`),
				replace: RedactAPIKey,
			},
			{
				name:    PatternBearerToken,
				regex:   regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
				replace: func(string) string { return "Bearer ***" },
			},
			{
				name:    PatternEmail,
				regex:   regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
				replace: RedactEmail,
			},
			{
				name:  PatternPassword,
				regex: regexp.MustCompile(`(?i)(password|passwd|pwd)[:=]\s*\S+`),
				replace: func(match string) string {
					i := strings.IndexAny(match, ":=")
					return match[:i] + ": ***"
				},
			},
		},
	}
}

// RedactString redacts every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllStringFunc(value, p.replace)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Attributes with a
// sensitive key are masked outright; string and error values are scanned
// for patterns.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactValue(a.Value))
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue redacts a sensitive value completely, keeping a short prefix
// of longer strings for correlation.
func redactValue(v slog.Value) string {
	if v.Kind() != slog.KindString {
		return "***"
	}
	s := v.String()
	if s == "" {
		return ""
	}
	return RedactAPIKey(s)
}

// RedactEmail redacts an email address partially (shows first char and domain).
func RedactEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if username == "" {
		return "***@" + domain
	}
	return username[:1] + "***@" + domain
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:6] + "***"
}
