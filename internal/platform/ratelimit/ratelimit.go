// Package ratelimit guards the HTTP surface with a per-client request
// limit. The Redis limiter is shared across instances; the in-memory
// limiter serves single-instance deployments and tests.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter checks whether a request identified by key is within its limit.
// A check consumes one slot when allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}
