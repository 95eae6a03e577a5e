package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestFixedWindowRejectsRequestPastCap(t *testing.T) {
	clock := newClock()
	limiter := NewFixedWindowLimiter(Config{Now: clock.Now})
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		d, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 20-i, d.Remaining)
		clock.Advance(time.Second)
	}

	d, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 20, d.Limit)
}

func TestFixedWindowResetsAfterWindowElapses(t *testing.T) {
	clock := newClock()
	limiter := NewFixedWindowLimiter(Config{Limit: 20, Window: time.Minute, Now: clock.Now})
	ctx := context.Background()
	start := clock.Now()

	for i := 0; i < 21; i++ {
		_, _ = limiter.Allow(ctx, "user-1")
	}
	d, _ := limiter.Allow(ctx, "user-1")
	require.False(t, d.Allowed)
	assert.True(t, d.ResetAt.Equal(start.Add(time.Minute)))

	// The window closes strictly after resetAt.
	clock.Advance(time.Minute)
	d, _ = limiter.Allow(ctx, "user-1")
	assert.False(t, d.Allowed)

	clock.Advance(time.Millisecond)
	d, _ = limiter.Allow(ctx, "user-1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 19, d.Remaining)
	assert.True(t, d.ResetAt.Equal(clock.Now().Add(time.Minute)))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindowLimiter(Config{Limit: 1, Now: newClock().Now})
	ctx := context.Background()

	a, _ := limiter.Allow(ctx, "a")
	b, _ := limiter.Allow(ctx, "b")
	a2, _ := limiter.Allow(ctx, "a")
	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestFixedWindowEvictsExpiredEntries(t *testing.T) {
	clock := newClock()
	limiter := NewFixedWindowLimiter(Config{Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "a")
	_, _ = limiter.Allow(ctx, "b")
	require.Equal(t, 2, limiter.Len())

	clock.Advance(30 * time.Second)
	_, _ = limiter.Allow(ctx, "c")
	assert.Equal(t, 0, limiter.Evict())

	clock.Advance(31 * time.Second)
	assert.Equal(t, 2, limiter.Evict())
	assert.Equal(t, 1, limiter.Len())
}

func TestFixedWindowSweepsOnAccess(t *testing.T) {
	clock := newClock()
	limiter := NewFixedWindowLimiter(Config{Window: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _ = limiter.Allow(ctx, k)
	}
	clock.Advance(2 * time.Minute)
	_, _ = limiter.Allow(ctx, "d")
	assert.Equal(t, 1, limiter.Len())
}

func TestFixedWindowConcurrentCallersNeverExceedCap(t *testing.T) {
	limiter := NewFixedWindowLimiter(Config{Limit: 20, Window: time.Hour})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := limiter.Allow(ctx, "shared"); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(20), allowed.Load())
}

func TestFixedWindowRunStopsOnCancel(t *testing.T) {
	limiter := NewFixedWindowLimiter(Config{Window: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- limiter.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
