package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. The bucket holds Max
// tokens and refills at Max per Window.
type MemoryLimiter struct {
	cfg   Config
	every rate.Limit
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryLimiter starts the limiter and its background cleanup.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	cfg = cfg.normalised()
	m := &MemoryLimiter{
		cfg:     cfg,
		every:   rate.Every(cfg.Window / time.Duration(cfg.Max)),
		now:     time.Now,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Allow consumes one token for key.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.limiterFor(key, now)

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return Decision{Allowed: false, RetryAfter: m.cfg.Window}, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

// Len reports how many keys are tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (m *MemoryLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *MemoryLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.lastAccess = now
		return e.limiter
	}

	lim := rate.NewLimiter(m.every, m.cfg.Max)
	m.entries[key] = &entry{limiter: lim, lastAccess: now}
	return lim
}

func (m *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(m.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(m.now())
		case <-m.stopCh:
			return
		}
	}
}

// cleanup drops keys idle for longer than a window; their bucket would be full again.
func (m *MemoryLimiter) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if now.Sub(e.lastAccess) > m.cfg.Window {
			delete(m.entries, key)
		}
	}
}
