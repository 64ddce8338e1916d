package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiterRejectsOverLimit(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	limiter := NewMemory(10, time.Minute, clock.Now)

	for i := 1; i <= 10; i++ {
		ok, err := limiter.Allow(ctx, "user-1")
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d rejected, want accepted", i)
		}
		clock.Advance(time.Second)
	}

	if ok, _ := limiter.Allow(ctx, "user-1"); ok {
		t.Fatal("11th request within the window accepted, want rejected")
	}

	if ok, _ := limiter.Allow(ctx, "user-2"); !ok {
		t.Error("other user's first request rejected")
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	limiter := NewMemory(10, time.Minute, clock.Now)

	for i := 0; i < 10; i++ {
		limiter.Allow(ctx, "user-1")
	}
	if ok, _ := limiter.Allow(ctx, "user-1"); ok {
		t.Fatal("request over the limit accepted")
	}

	clock.Advance(59 * time.Second)
	if ok, _ := limiter.Allow(ctx, "user-1"); ok {
		t.Fatal("request accepted before the window elapsed")
	}

	clock.Advance(time.Second)
	if ok, _ := limiter.Allow(ctx, "user-1"); !ok {
		t.Fatal("first request after the window elapsed rejected")
	}
}

func TestMemoryLimiterRejectedRequestsAreNotRecorded(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	limiter := NewMemory(2, 10*time.Second, clock.Now)

	limiter.Allow(ctx, "k")
	clock.Advance(5 * time.Second)
	limiter.Allow(ctx, "k")
	clock.Advance(4 * time.Second)
	if ok, _ := limiter.Allow(ctx, "k"); ok {
		t.Fatal("third request accepted")
	}

	// the first admitted event expires at t=10s; the rejected one at t=9s must not count
	clock.Advance(time.Second)
	if ok, _ := limiter.Allow(ctx, "k"); !ok {
		t.Fatal("request rejected after the oldest event expired")
	}
}

func TestMemoryLimiterConcurrentSameKey(t *testing.T) {
	limiter := NewMemory(10, time.Minute, nil)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(context.Background(), "user-1"); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 10 {
		t.Errorf("admitted %d concurrent requests, want 10", got)
	}
}

type recordingStore struct {
	key    string
	limit  int
	window time.Duration
}

func (r *recordingStore) SlidingWindowAllow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.key, r.limit, r.window = key, limit, window
	return true, nil
}

func TestSharedLimiterPrefixesKeys(t *testing.T) {
	store := &recordingStore{}
	limiter := NewShared(store, "ratelimit:detect:", 10, time.Minute)

	ok, err := limiter.Allow(context.Background(), "user-1")
	if err != nil || !ok {
		t.Fatalf("Allow = %v, %v; want true, nil", ok, err)
	}
	if store.key != "ratelimit:detect:user-1" || store.limit != 10 || store.window != time.Minute {
		t.Errorf("store called with %q, %d, %v", store.key, store.limit, store.window)
	}
}
