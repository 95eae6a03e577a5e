package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"golang.org/x/time/rate"
)

const throttleIdleTTL = 10 * time.Minute

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipThrottle is a per-address token bucket guarding credential endpoints.
type ipThrottle struct {
	mu        sync.Mutex
	limiters  map[string]*throttleEntry
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPThrottle(perMinute, burst int) *ipThrottle {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &ipThrottle{
		limiters: make(map[string]*throttleEntry),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

func (t *ipThrottle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastSweep) > throttleIdleTTL {
		for k, e := range t.limiters {
			if now.Sub(e.lastSeen) > throttleIdleTTL {
				delete(t.limiters, k)
			}
		}
		t.lastSweep = now
	}

	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (h *Handler) authThrottleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authThrottle == nil || h.authThrottle.allow(h.clientIP.resolve(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(time.Minute.Seconds())))
		if h.metrics != nil {
			h.metrics.ObserveRateLimited("auth")
		}
		writeMappedError(r.Context(), w, "auth_throttle", domain.ErrRateLimited)
	})
}
