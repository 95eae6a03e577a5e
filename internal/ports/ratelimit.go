package ports

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one Allow call.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitDecision, error)
}
