package ratelimit

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/feedback/pkg/limits"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestLimiter() *Limiter {
	return NewLimiter(Config{Limit: 30, Window: time.Minute, IdleTimeout: 10 * time.Minute}, nil)
}

func TestLimiter_RejectsThirtyFirstInWindow(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 30; i++ {
		d := l.Allow("acct", t0.Add(time.Duration(i)*100*time.Millisecond))
		require.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 29-i, d.Info.Remaining)
	}

	d := l.Allow("acct", t0.Add(59*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Info.Remaining)
	assert.Equal(t, 30, d.Info.Limit)
}

func TestLimiter_SteadyTwoSecondSpacingNeverRejects(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 300; i++ {
		d := l.Allow("acct", t0.Add(time.Duration(i)*2*time.Second))
		require.True(t, d.Allowed, "request %d at %ds was rejected", i+1, i*2)
	}
}

func TestLimiter_WindowBoundaryIsExclusive(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 30; i++ {
		require.True(t, l.Allow("acct", t0).Allowed)
	}

	assert.False(t, l.Allow("acct", t0.Add(time.Minute-time.Nanosecond)).Allowed)

	d := l.Allow("acct", t0.Add(time.Minute))
	assert.True(t, d.Allowed, "timestamps exactly one window old no longer count")
	assert.Equal(t, 29, d.Info.Remaining)
}

func TestLimiter_RejectedAttemptsAreNotRecorded(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 30; i++ {
		require.True(t, l.Allow("acct", t0).Allowed)
	}
	for i := 0; i < 50; i++ {
		require.False(t, l.Allow("acct", t0.Add(30*time.Second)).Allowed)
	}

	// Had the rejections been recorded, the window would still be full here.
	d := l.Allow("acct", t0.Add(61*time.Second))
	require.True(t, d.Allowed)
	assert.Equal(t, 29, d.Info.Remaining)
}

func TestLimiter_RetryAfter(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 30; i++ {
		require.True(t, l.Allow("acct", t0.Add(time.Duration(i)*time.Second)).Allowed)
	}

	d := l.Allow("acct", t0.Add(40*time.Second))
	require.False(t, d.Allowed)
	assert.Equal(t, 20*time.Second, d.RetryAfter)
	assert.Equal(t, t0.Add(time.Minute), d.Info.Reset)
}

func TestLimiter_IdentitiesAreIndependent(t *testing.T) {
	l := newTestLimiter()

	for i := 0; i < 30; i++ {
		require.True(t, l.Allow("a", t0).Allowed)
	}
	assert.False(t, l.Allow("a", t0).Allowed)
	assert.True(t, l.Allow("b", t0).Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_ConcurrentSameIdentity(t *testing.T) {
	l := newTestLimiter()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int64
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("acct", t0).Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(30), admitted.Load())
}

func TestLimiter_OutOfOrderTimestampsExpire(t *testing.T) {
	l := NewLimiter(Config{Limit: 2, Window: time.Minute, IdleTimeout: 10 * time.Minute}, nil)

	require.True(t, l.Allow("acct", t0.Add(30*time.Second)).Allowed)
	require.True(t, l.Allow("acct", t0).Allowed)

	d := l.Allow("acct", t0.Add(61*time.Second))
	assert.True(t, d.Allowed, "the stamp at t0 left the window")
	assert.Equal(t, 0, d.Info.Remaining)
	assert.Equal(t, t0.Add(90*time.Second), d.Info.Reset)
}

func TestLimiter_CheckStampsInLockOrder(t *testing.T) {
	l := NewLimiter(Config{Limit: 1000, Window: time.Hour, IdleTimeout: 2 * time.Hour}, nil)
	var tick atomic.Int64
	l.now = func() time.Time { return t0.Add(time.Duration(tick.Add(1)) * time.Millisecond) }

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Check(context.Background(), "acct")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	w := l.getWindow("acct")
	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.stamps, 100)
	for i := 1; i < len(w.stamps); i++ {
		assert.False(t, w.stamps[i].Before(w.stamps[i-1]), "stamp %d is out of order", i)
	}
}

func TestLimiter_Check(t *testing.T) {
	l := newTestLimiter()
	l.now = func() time.Time { return t0 }
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		_, err := l.Check(ctx, "acct")
		require.NoError(t, err)
	}

	d, err := l.Check(ctx, "acct")
	require.Error(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, errors.Is(err, limits.ErrRateLimited))
	assert.False(t, errors.Is(err, limits.ErrQuotaExceeded))

	var le *limits.LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, limits.TypeRateLimit, le.Type)
	assert.Equal(t, "acct", le.Identifier)
	assert.Equal(t, 30, le.Current)
	assert.Equal(t, time.Minute, le.RetryAfter)
}

func TestLimiter_Reap(t *testing.T) {
	l := newTestLimiter()

	l.Allow("idle", t0)
	l.Allow("active", t0.Add(9*time.Minute))

	assert.Equal(t, 0, l.Reap(t0.Add(10*time.Minute-time.Nanosecond)))
	assert.Equal(t, 1, l.Reap(t0.Add(10*time.Minute)))
	assert.Equal(t, 1, l.Len())

	// A reaped identity starts over with an empty window.
	d := l.Allow("idle", t0.Add(11*time.Minute))
	assert.True(t, d.Allowed)
	assert.Equal(t, 29, d.Info.Remaining)
}

func TestLimiter_StartReaperStopsOnCancel(t *testing.T) {
	l := NewLimiter(Config{Limit: 5, Window: time.Millisecond, IdleTimeout: time.Millisecond, ReapInterval: 5 * time.Millisecond}, nil)
	l.Allow("acct", time.Now().Add(-time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.StartReaper(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 30, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout)

	cfg = Config{Window: time.Hour, IdleTimeout: time.Minute}.withDefaults()
	assert.Equal(t, time.Hour, cfg.IdleTimeout, "idle timeout never shorter than the window")
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("FEEDBACK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FEEDBACK_TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	prefix := "feedback-test:" + uuid.NewString() + ":"
	l := NewRedisLimiter(client, prefix, Config{Limit: 3, Window: time.Minute}, nil)
	l.now = func() time.Time { return t0 }

	for i := 0; i < 3; i++ {
		d, err := l.Check(ctx, "acct")
		require.NoError(t, err)
		assert.Equal(t, 2-i, d.Info.Remaining)
	}

	d, err := l.Check(ctx, "acct")
	assert.ErrorIs(t, err, limits.ErrRateLimited)
	assert.Equal(t, time.Minute, d.RetryAfter)

	l.now = func() time.Time { return t0.Add(time.Minute) }
	_, err = l.Check(ctx, "acct")
	assert.NoError(t, err)
}
