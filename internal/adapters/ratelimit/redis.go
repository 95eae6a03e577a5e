package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter and starts the window on first use.
// A counter left without a TTL is given one so a key can never stick forever.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisFixedWindowLimiter shares fixed-window counters across API replicas.
// Key expiry closes the window, so no janitor is needed.
type RedisFixedWindowLimiter struct {
	client redis.Scripter
	cfg    Config
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.Scripter, cfg Config, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisFixedWindowLimiter{
		client: client,
		cfg:    cfg.withDefaults(),
		prefix: prefix,
	}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) (ports.RateLimitDecision, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	res, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, l.cfg.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("redis fixed window: %w", err)
	}
	if len(res) != 2 {
		return ports.RateLimitDecision{}, fmt.Errorf("redis fixed window: unexpected reply length %d", len(res))
	}

	count := int(res[0])
	remaining := l.cfg.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateLimitDecision{
		Allowed:   count <= l.cfg.Limit,
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		ResetAt:   l.cfg.Now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
