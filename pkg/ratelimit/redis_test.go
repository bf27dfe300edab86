package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterFailsOpenWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, Config{Window: time.Minute, Max: 1})
	d, err := l.Allow(context.Background(), "10.0.0.1")

	require.Error(t, err)
	assert.True(t, d.Allowed)
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	assert.Equal(t, 1, Decision{RetryAfter: 10 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 2, Decision{RetryAfter: 1500 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 900, Decision{RetryAfter: 15 * time.Minute}.RetryAfterSeconds())
}
