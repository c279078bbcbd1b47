package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/feedback/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordHTTPRequest("GET /health", 200, time.Millisecond)
		c.RecordCacheHit("result")
		c.RecordRateLimitCheck("memory", true)
		c.RecordAnalysis("parsed", time.Second)
		c.RecordProviderCall("openai", "gpt", time.Second, errors.New("boom"))
	})
}

func TestCollector_DisabledRecordsNothing(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: false, Namespace: "test"}, prometheus.NewRegistry())
	c.RecordCacheHit("result")

	assert.Equal(t, 0.0, testutil.ToFloat64(c.cacheMetrics.hitsTotal.WithLabelValues("result")))
}

func TestCollector_Records(t *testing.T) {
	c := newTestCollector(t)

	c.RecordHTTPRequest("POST /api/analyze", 200, 50*time.Millisecond)
	c.RecordHTTPRequest("POST /api/analyze", 429, time.Millisecond)
	c.RecordCacheHit("result")
	c.RecordCacheMiss("result")
	c.RecordCacheMiss("result")
	c.RecordCacheEviction("result", "expired")
	c.UpdateCacheSize("result", 42)
	c.RecordRateLimitCheck("memory", false)
	c.UpdateTrackedIdentities(3)
	c.RecordQuotaCheck("exceeded")
	c.RecordAnalysis("fallback", time.Second)
	c.RecordAnalysisFailure("persistence")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestMetrics.requestsTotal.WithLabelValues("POST /api/analyze", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheMetrics.hitsTotal.WithLabelValues("result")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheMetrics.missesTotal.WithLabelValues("result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheMetrics.evictionsTotal.WithLabelValues("result", "expired")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.cacheMetrics.entries.WithLabelValues("result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.limitMetrics.rateLimitChecks.WithLabelValues("memory", "blocked")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.limitMetrics.trackedIdentities))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.limitMetrics.quotaChecks.WithLabelValues("exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.analysisMetrics.analysesTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.analysisMetrics.failuresTotal.WithLabelValues("persistence")))
}

type statusError struct{ kind string }

func (e statusError) Error() string     { return e.kind }
func (e statusError) ErrorType() string { return e.kind }

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: "timeout"},
		{err: context.Canceled, want: "canceled"},
		{err: fmt.Errorf("wrapped: %w", statusError{kind: "rate_limit"}), want: "rate_limit"},
		{err: errors.New("boom"), want: "error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorType(tt.err))
	}
}

func TestCollector_ProviderCall(t *testing.T) {
	c := newTestCollector(t)

	c.RecordProviderCall("openai", "gpt-3.5-turbo", 200*time.Millisecond, nil)
	c.RecordProviderCall("openai", "gpt-3.5-turbo", 30*time.Second, context.DeadlineExceeded)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.providerMetrics.requests.WithLabelValues("openai", "gpt-3.5-turbo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerMetrics.errors.WithLabelValues("openai", "timeout")))
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(t)
	c.RecordCacheHit("result")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_cache_hits_total"))
}
