package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/feedback/pkg/providerfactory"
)

func ok(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticSummary providerfactory.HealthSummary

func (s staticSummary) GetHealthSummary() providerfactory.HealthSummary {
	return providerfactory.HealthSummary(s)
}

func TestNew_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, New(0).checkTimeout)
	assert.Equal(t, time.Second, New(time.Second).checkTimeout)
}

func TestRegisterAndList(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("storage", ok)
	c.RegisterOptionalCheck("providers", ok)
	assert.Equal(t, []string{"providers", "storage"}, c.ListChecks())

	c.UnregisterCheck("providers")
	assert.Equal(t, []string{"storage"}, c.ListChecks())
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(c *Checker)
		expected string
	}{
		{"no checks", func(*Checker) {}, StatusReady},
		{"all healthy", func(c *Checker) {
			c.RegisterCheck("storage", ok)
			c.RegisterOptionalCheck("providers", ok)
		}, StatusReady},
		{"optional failing", func(c *Checker) {
			c.RegisterCheck("storage", ok)
			c.RegisterOptionalCheck("providers", failing("down"))
		}, StatusDegraded},
		{"critical failing", func(c *Checker) {
			c.RegisterCheck("storage", failing("db locked"))
			c.RegisterOptionalCheck("providers", failing("down"))
		}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			tt.setup(c)
			assert.Equal(t, tt.expected, c.CheckReadiness(context.Background()).Status)
		})
	}
}

func TestCheckReadiness_ResultDetails(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("storage", failing("db locked"))

	status := c.CheckReadiness(context.Background())
	result := status.Checks["storage"]
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "db locked", result.Message)
	assert.True(t, result.Critical)
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			// Keep running past the deadline to exercise the timeout path.
			time.Sleep(50 * time.Millisecond)
			return nil
		}
	})

	start := time.Now()
	status := c.CheckReadiness(context.Background())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, ErrCheckTimeout.Error(), status.Checks["slow"].Message)
}

func TestPingCheck(t *testing.T) {
	check := PingCheck(pingerFunc(func(context.Context) error { return errors.New("closed") }))
	assert.EqualError(t, check(context.Background()), "closed")
}

func TestProviderCheck(t *testing.T) {
	assert.EqualError(t, ProviderCheck(staticSummary{})(context.Background()), "no providers configured")
	assert.Error(t, ProviderCheck(staticSummary{Total: 2, Unhealthy: 2})(context.Background()))
	assert.NoError(t, ProviderCheck(staticSummary{Total: 2, Healthy: 1, Unhealthy: 1})(context.Background()))
}

func TestRegister_Endpoints(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("storage", failing("db locked"))

	mux := http.NewServeMux()
	Register(mux, c, "1.2.3", "abc123", "2025-11-20")

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, StatusOK, status.Status)
	})

	t.Run("readiness unavailable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

		var info VersionInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, "1.2.3", info.Version)
		assert.Equal(t, "abc123", info.Commit)
		assert.NotEmpty(t, info.GoVersion)
	})

	t.Run("head has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("post rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestReadinessHandler_DegradedIsOK(t *testing.T) {
	c := New(time.Second)
	c.RegisterOptionalCheck("providers", failing("down"))

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
