package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg Config, now *time.Time) *MemoryLimiter {
	t.Helper()
	m := NewMemoryLimiter(cfg)
	m.now = func() time.Time { return *now }
	t.Cleanup(m.Stop)
	return m
}

func TestMemoryLimiterBlocksAfterBudget(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLimiter(t, Config{Window: time.Minute, Max: 3}, &now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := m.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
	}

	d, err := m.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 20*time.Second, d.RetryAfter)
	assert.Equal(t, 20, d.RetryAfterSeconds())

	other, err := m.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiterRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLimiter(t, Config{Window: time.Minute, Max: 2}, &now)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "k")
	_, _ = m.Allow(ctx, "k")
	d, _ := m.Allow(ctx, "k")
	require.False(t, d.Allowed)

	now = now.Add(30 * time.Second)
	d, err := m.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLimiter(t, Config{Window: time.Minute, Max: 2}, &now)

	_, _ = m.Allow(context.Background(), "a")
	_, _ = m.Allow(context.Background(), "b")
	require.Equal(t, 2, m.Len())

	m.cleanup(now.Add(2 * time.Minute))
	assert.Equal(t, 0, m.Len())
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.normalised()
	assert.Equal(t, 15*time.Minute, cfg.Window)
	assert.Equal(t, 100, cfg.Max)
}
