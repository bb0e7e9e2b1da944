//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/assistant/cache"
	"hsaonboard/internal/assistant/models"
	"hsaonboard/internal/platform/redis"
	"hsaonboard/pkg/testutil"
	"hsaonboard/pkg/testutil/containers"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	client := &redis.Client{Client: rc.Client}
	c := cache.NewRedisCache(client, time.Minute, testutil.NewTestLogger())

	ctx := context.Background()
	key := cache.Key("What are the HSA contribution limits for 2024?", "")

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	answer := &models.Answer{
		Answer:          "The 2024 limit is $4,150 for self-only coverage.",
		ConfidenceScore: 0.9,
		Citations: []models.Citation{
			{DocumentName: "irs.pdf", Excerpt: "annual contribution limit", RelevanceScore: 0.9},
		},
		SourceDocuments: []string{"irs.pdf"},
	}
	c.Set(ctx, key, answer)

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, answer.Answer, got.Answer)
	require.Len(t, got.Citations, 1)
	assert.Equal(t, "irs.pdf", got.Citations[0].DocumentName)
}

func TestRedisCacheExpiry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	client := &redis.Client{Client: rc.Client}
	c := cache.NewRedisCache(client, time.Second, testutil.NewTestLogger())

	ctx := context.Background()
	key := cache.Key("Can I use my HSA for dental expenses?", "")
	c.Set(ctx, key, &models.Answer{Answer: "Yes, dental care is a qualified expense."})

	_, ok := c.Get(ctx, key)
	require.True(t, ok)

	time.Sleep(1500 * time.Millisecond)

	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}
