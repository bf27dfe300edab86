package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sis-mentoria:ratelimit:"

// RedisLimiter counts requests per key in a fixed window shared by every replica.
type RedisLimiter struct {
	client redis.Cmdable
	cfg    Config
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client redis.Cmdable, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg.normalised()}
}

// Allow increments the window counter for key. The expiry is only set by the first hit so
// the window does not slide with traffic.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := keyPrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, r.cfg.Window)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	if count > r.cfg.Max {
		retry := ttl.Val()
		if retry <= 0 {
			retry = r.cfg.Window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true, Remaining: r.cfg.Max - count}, nil
}
