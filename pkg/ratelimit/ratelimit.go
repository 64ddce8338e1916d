package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most Limit events per key inside a trailing window.
// Allow records the event only when it is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Clock func() time.Time

type window struct {
	mu sync.Mutex
	// ring of admitted timestamps, oldest at head
	times []time.Time
	head  int
	size  int
}

func newWindow(limit int) *window {
	return &window{times: make([]time.Time, limit)}
}

func (w *window) allow(now time.Time, limit int, span time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.size > 0 && now.Sub(w.times[w.head]) >= span {
		w.head = (w.head + 1) % limit
		w.size--
	}

	if w.size >= limit {
		return false
	}

	w.times[(w.head+w.size)%limit] = now
	w.size++
	return true
}

type memoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
	now     Clock
}

// NewMemory keeps windows in process memory. A nil clock uses time.Now.
func NewMemory(limit int, span time.Duration, clock Clock) Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &memoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
		now:     clock,
	}
}

func (m *memoryLimiter) windowFor(key string) *window {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok {
		w = newWindow(m.limit)
		m.windows[key] = w
	}
	return w
}

func (m *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if m.limit <= 0 {
		return false, nil
	}
	return m.windowFor(key).allow(m.now(), m.limit, m.span), nil
}

// WindowStore is a shared backend that performs the check-and-append
// atomically on its side.
type WindowStore interface {
	SlidingWindowAllow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type storeLimiter struct {
	store  WindowStore
	prefix string
	limit  int
	span   time.Duration
}

// NewShared delegates to store, so every instance sees the same windows.
func NewShared(store WindowStore, prefix string, limit int, span time.Duration) Limiter {
	return &storeLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		span:   span,
	}
}

func (s *storeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if s.limit <= 0 {
		return false, nil
	}
	return s.store.SlidingWindowAllow(ctx, s.prefix+key, s.limit, s.span)
}
