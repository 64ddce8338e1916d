package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSlidingWindowAllow(t *testing.T) {
	client := startRedis(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &redisClient{client: client, now: func() time.Time { return now }}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := r.SlidingWindowAllow(ctx, "detect:U1", 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("event %d: ok=%v err=%v", i+1, ok, err)
		}
		now = now.Add(time.Second)
	}

	if ok, _ := r.SlidingWindowAllow(ctx, "detect:U1", 3, time.Minute); ok {
		t.Error("fourth event inside the window admitted")
	}
	if ok, _ := r.SlidingWindowAllow(ctx, "detect:U2", 3, time.Minute); !ok {
		t.Error("keys must not share a window")
	}

	now = now.Add(time.Minute)
	if ok, _ := r.SlidingWindowAllow(ctx, "detect:U1", 3, time.Minute); !ok {
		t.Error("event after the window rejected")
	}
}
