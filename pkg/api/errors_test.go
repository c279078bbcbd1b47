package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/feedback/pkg/analysis"
	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/api/types"
	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/storage"
)

func TestHandleError(t *testing.T) {
	rateErr := limits.NewRateLimitError("acct-1",
		limits.RateLimitInfo{Limit: 30, Remaining: 0, Window: time.Minute},
		1500*time.Millisecond,
	)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{"invalid input", fmt.Errorf("%w: too long", analysis.ErrInvalidInput), 400, types.ErrorTypeInvalidRequest, types.CodeInvalidValue},
		{"validation", &types.ValidationError{Field: "text", Message: "text is required"}, 400, types.ErrorTypeInvalidRequest, types.CodeMissingField},
		{"bad json", &RequestError{Message: "invalid JSON", Code: types.CodeInvalidJSON}, 400, types.ErrorTypeInvalidRequest, types.CodeInvalidJSON},
		{"too large", &RequestError{Message: "too big", Code: types.CodeRequestTooLarge, TooLarge: true}, 413, types.ErrorTypeRequestTooLarge, types.CodeRequestTooLarge},
		{"unauthenticated", limits.ErrUnauthenticated, 401, types.ErrorTypeAuthentication, types.CodeInvalidAPIKey},
		{"bad login", auth.ErrInvalidCredentials, 401, types.ErrorTypeAuthentication, types.CodeInvalidCredentials},
		{"duplicate email", fmt.Errorf("create: %w", storage.ErrDuplicateEmail), 400, types.ErrorTypeInvalidRequest, types.CodeDuplicateEmail},
		{"invalid email", auth.ErrInvalidEmail, 400, types.ErrorTypeInvalidRequest, types.CodeInvalidValue},
		{"weak password", auth.ErrWeakPassword, 400, types.ErrorTypeInvalidRequest, types.CodeInvalidValue},
		{"export format", fmt.Errorf("%w: xml", analytics.ErrUnsupportedFormat), 400, types.ErrorTypeInvalidRequest, types.CodeUnsupportedFormat},
		{"rate limited", rateErr, 429, types.ErrorTypeRateLimitExceeded, types.CodeRateLimited},
		{"quota", limits.NewQuotaError("acct-1", 100, 100), 429, types.ErrorTypeQuotaExceeded, types.CodeQuotaExceeded},
		{"bare quota", limits.ErrQuotaExceeded, 429, types.ErrorTypeQuotaExceeded, types.CodeQuotaExceeded},
		{"limits storage", fmt.Errorf("%w: redis down", limits.ErrStorageFailure), 503, types.ErrorTypeServiceUnavailable, types.CodeStorageUnavailable},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), 504, types.ErrorTypeTimeout, types.CodeRequestTimeout},
		{"persistence", fmt.Errorf("%w: disk full", analysis.ErrPersistence), 500, types.ErrorTypeServerError, types.CodeInternalError},
		{"unknown", errors.New("something odd"), 500, types.ErrorTypeServerError, types.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := HandleError(tt.err)
			assert.Equal(t, tt.wantStatus, resp.Error.HTTPStatusCode())
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleError_Messages(t *testing.T) {
	rateErr := limits.NewRateLimitError("acct-1", limits.RateLimitInfo{Limit: 30}, 1500*time.Millisecond)
	assert.Equal(t, "Rate limit exceeded: 30 requests allowed per window. Try again in 2 seconds.",
		HandleError(rateErr).Error.Message)

	quota := HandleError(limits.NewQuotaError("acct-1", 100, 100)).Error.Message
	assert.Contains(t, quota, "100 of 100")

	internal := HandleError(fmt.Errorf("%w: /var/lib/db locked", analysis.ErrPersistence)).Error.Message
	assert.NotContains(t, internal, "/var/lib")
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/api/analytics", nil), limits.ErrUnauthenticated)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_error", body["error"]["type"])
	assert.NotEmpty(t, body["error"]["message"])
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var req types.AnalyzeRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hello world"}`))
		require.NoError(t, DecodeJSON(r, &req))
		assert.Equal(t, "hello world", req.Text)
	})

	t.Run("validation runs", func(t *testing.T) {
		var req types.CredentialsRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"  "}`))
		var valErr *types.ValidationError
		require.ErrorAs(t, DecodeJSON(r, &req), &valErr)
		assert.Equal(t, "email", valErr.Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		var req types.AnalyzeRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":42}`))
		var reqErr *RequestError
		require.ErrorAs(t, DecodeJSON(r, &req), &reqErr)
		assert.Equal(t, types.CodeInvalidJSON, reqErr.Code)
	})

	t.Run("empty", func(t *testing.T) {
		var req types.AnalyzeRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var reqErr *RequestError
		require.ErrorAs(t, DecodeJSON(r, &req), &reqErr)
		assert.Equal(t, "request body is empty", reqErr.Message)
	})
}
