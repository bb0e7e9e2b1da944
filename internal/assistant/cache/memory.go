package cache

import (
	"context"
	"sync"
	"time"

	"hsaonboard/internal/assistant/models"
)

// MemoryCache is an in-process answer cache for tests and local development.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	answer    models.Answer
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*models.Answer, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	clone := entry.answer
	return &clone, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, answer *models.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{answer: *answer, expiresAt: time.Now().Add(c.ttl)}
}
