package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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
	"mercator-hq/feedback/pkg/cache"
	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/storage"
)

var testAccount = &storage.Account{
	ID:            "acct-1",
	Email:         "ann@example.com",
	APIKey:        "sk_0123456789abcdef0123456789abcdef01234567",
	Plan:          "free",
	RequestsUsed:  3,
	RequestsLimit: 100,
}

type stubAnalyzer struct {
	outcome *analysis.Outcome
	err     error
	text    string
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ *storage.Account, text string) (*analysis.Outcome, error) {
	s.text = text
	return s.outcome, s.err
}

type stubReader struct {
	report  *analytics.Report
	records []storage.AnalysisRecord
	err     error
}

func (s *stubReader) ForAccount(context.Context, *storage.Account) (*analytics.Report, error) {
	return s.report, s.err
}

func (s *stubReader) Export(ctx context.Context, _ *storage.Account, e analytics.Exporter, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	return e.Export(ctx, s.records, w)
}

type stubAccounts struct {
	account *storage.Account
	err     error
}

func (s *stubAccounts) Register(context.Context, string, string) (*storage.Account, error) {
	return s.account, s.err
}

func (s *stubAccounts) Login(context.Context, string, string) (*storage.Account, error) {
	return s.account, s.err
}

func authed(req *http.Request) *http.Request {
	return req.WithContext(auth.WithAccount(req.Context(), testAccount))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorDetail {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAnalyzeHandler_Success(t *testing.T) {
	stub := &stubAnalyzer{outcome: &analysis.Outcome{
		RecordID: "rec-1",
		Payload: cache.Payload{
			Sentiment:   "positive",
			Score:       9,
			Suggestions: []string{"Keep it up"},
			Summary:     "Happy customer",
		},
		RequestsUsed: 4,
	}}
	h := NewAnalyzeHandler(stub)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"Great product, love it!"}`)))
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Great product, love it!", stub.text)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
	assert.JSONEq(t, `{
		"success": true,
		"id": "rec-1",
		"sentiment": "positive",
		"score": 9,
		"suggestions": ["Keep it up"],
		"summary": "Happy customer"
	}`, rec.Body.String())
}

func TestAnalyzeHandler_CacheHitAndEmptySuggestions(t *testing.T) {
	stub := &stubAnalyzer{outcome: &analysis.Outcome{
		RecordID: "rec-2",
		Payload:  cache.Payload{Sentiment: "neutral", Score: 5, Summary: "Error"},
		CacheHit: true,
	}}
	rec := serve(NewAnalyzeHandler(stub),
		authed(httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"hello there"}`))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get(CacheHeader))
	assert.Contains(t, rec.Body.String(), `"suggestions":[]`)
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authed     bool
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "no account in context",
			body:       `{"text":"hello there"}`,
			wantStatus: http.StatusUnauthorized,
			wantType:   types.ErrorTypeAuthentication,
			wantCode:   types.CodeInvalidAPIKey,
		},
		{
			name:       "malformed json",
			body:       `{"text":`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantType:   types.ErrorTypeInvalidRequest,
			wantCode:   types.CodeInvalidJSON,
		},
		{
			name:       "empty body",
			body:       ``,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   types.CodeInvalidJSON,
		},
		{
			name:       "missing text",
			body:       `{}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   types.CodeMissingField,
		},
		{
			name:       "text too short",
			body:       `{"text":"hi"}`,
			authed:     true,
			err:        fmt.Errorf("%w: too short", analysis.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   types.CodeInvalidValue,
		},
		{
			name:       "quota spent at commit",
			body:       `{"text":"hello there"}`,
			authed:     true,
			err:        limits.NewQuotaError("acct-1", 100, 100),
			wantStatus: http.StatusTooManyRequests,
			wantType:   types.ErrorTypeQuotaExceeded,
		},
		{
			name:       "persistence failure",
			body:       `{"text":"hello there"}`,
			authed:     true,
			err:        fmt.Errorf("%w: disk full", analysis.ErrPersistence),
			wantStatus: http.StatusInternalServerError,
			wantType:   types.ErrorTypeServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalyzeHandler(&stubAnalyzer{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			if tt.authed {
				req = authed(req)
			}
			rec := serve(h, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			detail := decodeError(t, rec)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, detail.Type)
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, detail.Code)
			}
			assert.NotContains(t, rec.Body.String(), "disk full")
		})
	}
}

func TestAnalyticsHandler(t *testing.T) {
	reader := &stubReader{report: &analytics.Report{
		Summary:       analytics.Summary{Total: 3, Positive: 2, Negative: 1, Average: 6.33},
		RequestsUsed:  3,
		RequestsLimit: 100,
	}}

	rec := serve(NewAnalyticsHandler(reader), authed(httptest.NewRequest(http.MethodGet, "/api/analytics", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"total": 3, "positive": 2, "negative": 1, "neutral": 0,
		"average": 6.33, "requests_used": 3, "requests_limit": 100
	}`, rec.Body.String())

	rec = serve(NewAnalyticsHandler(reader), httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	reader.err = errors.New("db gone")
	rec = serve(NewAnalyticsHandler(reader), authed(httptest.NewRequest(http.MethodGet, "/api/analytics", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportHandler(t *testing.T) {
	reader := &stubReader{records: []storage.AnalysisRecord{{
		ID:          "rec-1",
		AccountID:   "acct-1",
		Text:        "Great product",
		Sentiment:   "positive",
		Score:       9,
		Suggestions: []string{"More colors"},
		Summary:     "Happy",
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}}}
	h := NewExportHandler(reader)
	h.now = func() time.Time { return time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC) }

	t.Run("json default", func(t *testing.T) {
		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/api/analyses/export", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="analyses-2025-03-02.json"`, rec.Header().Get("Content-Disposition"))

		var records []storage.AnalysisRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "rec-1", records[0].ID)
	})

	t.Run("csv", func(t *testing.T) {
		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/api/analyses/export?format=csv", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "id,"))
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/api/analyses/export?format=xml", nil)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, types.CodeUnsupportedFormat, decodeError(t, rec).Code)
	})
}

func TestProfileHandler(t *testing.T) {
	rec := serve(NewProfileHandler(), authed(httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var profile types.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, types.NewProfileResponse(testAccount), profile)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterHandler(t *testing.T) {
	accounts := &stubAccounts{account: testAccount}

	rec := serve(NewRegisterHandler(accounts),
		httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"ann@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"id": "acct-1",
		"email": "ann@example.com",
		"api_key": "sk_0123456789abcdef0123456789abcdef01234567",
		"plan": "free",
		"requests_limit": 100
	}`, rec.Body.String())

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode string
	}{
		{"missing password", `{"email":"ann@example.com"}`, nil, types.CodeMissingField},
		{"duplicate", `{"email":"ann@example.com","password":"secret1"}`, storage.ErrDuplicateEmail, types.CodeDuplicateEmail},
		{"weak password", `{"email":"ann@example.com","password":"abc"}`, fmt.Errorf("%w: at least 6", auth.ErrWeakPassword), types.CodeInvalidValue},
		{"invalid email", `{"email":"nope","password":"secret1"}`, auth.ErrInvalidEmail, types.CodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewRegisterHandler(&stubAccounts{err: tt.err}),
				httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	rec := serve(NewLoginHandler(&stubAccounts{account: testAccount}),
		httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ann@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.RequestsUsed)
	assert.Equal(t, testAccount.APIKey, resp.APIKey)

	rec = serve(NewLoginHandler(&stubAccounts{err: auth.ErrInvalidCredentials}),
		httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ann@example.com","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, types.CodeInvalidCredentials, decodeError(t, rec).Code)
}

func TestStatusHandler(t *testing.T) {
	rec := serve(NewStatusHandler(), httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Feedback Analyzer API v1.0"}`, rec.Body.String())
}
