// Package ratelimit throttles requests per client key over a fixed window.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Config describes the budget shared by every backend.
type Config struct {
	Window time.Duration
	Max    int
}

func (c Config) normalised() Config {
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	if c.Max <= 0 {
		c.Max = 100
	}
	return c
}

// RetryAfterSeconds renders the Retry-After header value, rounded up to at least one second.
func (d Decision) RetryAfterSeconds() int {
	retry := d.RetryAfter
	if retry < time.Second {
		retry = time.Second
	}
	return int((retry + time.Second - 1) / time.Second)
}

var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
