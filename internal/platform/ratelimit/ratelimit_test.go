package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/platform/middleware"
	"hsaonboard/internal/platform/ratelimit"
	"hsaonboard/pkg/testutil"
)

func TestMemoryLimiterAllowsWithinLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2-i, result.Remaining)
	}

	result, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, time.Minute)

	first, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	other, err := limiter.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	again, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, again.Allowed)
}

func TestMemoryLimiterWindowExpires(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, 10*time.Millisecond)

	first, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	time.Sleep(20 * time.Millisecond)

	second, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
}

func limitedHandler(limiter ratelimit.Limiter) http.Handler {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ratelimit.Middleware(limiter, testutil.NewTestLogger())(next)
	return middleware.ClientMetadata(handler)
}

func TestMiddlewareReturns429OverLimit(t *testing.T) {
	handler := limitedHandler(ratelimit.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/applications", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/applications", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	return nil, context.DeadlineExceeded
}

func TestMiddlewareFailsOpen(t *testing.T) {
	handler := limitedHandler(brokenLimiter{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/applications", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
