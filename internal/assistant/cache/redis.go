package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hsaonboard/internal/assistant/models"
	"hsaonboard/internal/platform/redis"
)

// DefaultTTL bounds how long a cached answer stays fresh. HSA limits change
// yearly; an hour keeps the cache useful without serving stale figures for
// long after a knowledge base update.
const DefaultTTL = time.Hour

// RedisCache caches answers in Redis. Cache failures never fail the request;
// a broken cache degrades to calling the model every time.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Answer, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.WarnContext(ctx, "answer cache read failed", "error", err)
		}
		return nil, false
	}
	var answer models.Answer
	if err := json.Unmarshal(raw, &answer); err != nil {
		c.logger.WarnContext(ctx, "answer cache entry malformed", "key", key, "error", err)
		return nil, false
	}
	return &answer, true
}

func (c *RedisCache) Set(ctx context.Context, key string, answer *models.Answer) {
	raw, err := json.Marshal(answer)
	if err != nil {
		c.logger.WarnContext(ctx, "answer cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "answer cache write failed", "error", err)
	}
}
