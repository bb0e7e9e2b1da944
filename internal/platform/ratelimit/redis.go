package ratelimit

import (
	"context"
	"fmt"
	"time"

	"hsaonboard/internal/platform/redis"
)

// RedisLimiter implements Limiter with a fixed window counter in Redis,
// shared across server instances. The key expires with the window so idle
// clients cost nothing.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per key within window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check for %s: %w", key, err)
	}

	n := int(count.Val())
	resetAt := time.Now().Add(ttl.Val())
	if n > l.limit {
		return &Result{Allowed: false, Limit: l.limit, ResetAt: resetAt}, nil
	}
	return &Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - n,
		ResetAt:   resetAt,
	}, nil
}
