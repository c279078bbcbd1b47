package providers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("upstream")

	var authErr *AuthError
	require.True(t, errors.As(ClassifyStatus("openai", 401, "bad key", nil, cause), &authErr))
	assert.Equal(t, "auth", authErr.ErrorType())

	h := http.Header{}
	h.Set("Retry-After", "7")
	var rlErr *RateLimitError
	require.True(t, errors.As(ClassifyStatus("openai", 429, "slow down", h, cause), &rlErr))
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)

	err := ClassifyStatus("anthropic", 529, "overloaded", nil, cause)
	var pErr *ProviderError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "server_error", pErr.ErrorType())
	assert.ErrorIs(t, err, cause)

	pErr = &ProviderError{Provider: "openai", StatusCode: 400}
	assert.Equal(t, "client_error", pErr.ErrorType())
}

func TestHealthTracker(t *testing.T) {
	h := NewHealthTracker()
	assert.True(t, h.IsHealthy())

	boom := errors.New("boom")
	h.RecordResult(boom)
	h.RecordResult(boom)
	assert.True(t, h.IsHealthy(), "two failures stay under the threshold")

	h.RecordResult(boom)
	assert.False(t, h.IsHealthy())
	assert.Equal(t, 3, h.GetHealth().ConsecutiveFailures)

	h.RecordResult(nil)
	health := h.GetHealth()
	assert.True(t, health.IsHealthy)
	assert.Zero(t, health.ConsecutiveFailures)
	assert.Equal(t, int64(4), health.TotalRequests)
	assert.Equal(t, int64(3), health.FailedRequests)
	assert.NoError(t, health.LastError)
}
