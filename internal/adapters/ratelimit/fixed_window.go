package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

const (
	DefaultLimit  = 20
	DefaultWindow = time.Minute
)

// Config sizes a fixed-window limiter.
type Config struct {
	Limit  int
	Window time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter is an in-process fixed-window counter keyed by caller.
// Expired windows are swept lazily from Allow at most once per window and
// eagerly by Run.
type FixedWindowLimiter struct {
	cfg Config

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

func NewFixedWindowLimiter(cfg Config) *FixedWindowLimiter {
	cfg = cfg.withDefaults()
	return &FixedWindowLimiter{
		cfg:       cfg,
		windows:   make(map[string]*window),
		nextSweep: cfg.Now().Add(cfg.Window),
	}
}

// Allow admits exactly Limit requests per key per window; the request that
// pushes the count past Limit is rejected.
func (l *FixedWindowLimiter) Allow(_ context.Context, key string) (ports.RateLimitDecision, error) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		l.sweepLocked(now)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.cfg.Window)}
		l.windows[key] = w
		return l.decision(w, true), nil
	}

	w.count++
	return l.decision(w, w.count <= l.cfg.Limit), nil
}

func (l *FixedWindowLimiter) decision(w *window, allowed bool) ports.RateLimitDecision {
	remaining := l.cfg.Limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateLimitDecision{
		Allowed:   allowed,
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}
}

// Evict drops every expired window and returns how many were removed.
func (l *FixedWindowLimiter) Evict() int {
	now := l.cfg.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(now)
}

func (l *FixedWindowLimiter) sweepLocked(now time.Time) int {
	removed := 0
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	l.nextSweep = now.Add(l.cfg.Window)
	return removed
}

// Len reports the number of tracked keys.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Run evicts expired windows once per window until ctx is cancelled.
func (l *FixedWindowLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := l.Evict(); removed > 0 {
				slog.Default().DebugContext(ctx, "rate limit windows evicted",
					"module", "ratelimit",
					"layer", "adapter",
					"operation", "evict_windows",
					"outcome", "success",
					"evicted_count", removed,
				)
			}
		}
	}
}
