package redis

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	SlidingWindowAllow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Close() error
}

type redisClient struct {
	client *redis.Client
	now    func() time.Time
}

// slidingWindowScript drops members older than the window, then admits and
// records the event only while fewer than limit members remain.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return 1
`)

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return NewWithClient(client)
}

func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client, now: time.Now}
}

func (r *redisClient) SlidingWindowAllow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(now.UnixNano(), 10)

	res, err := slidingWindowScript.Run(ctx, r.client, []string{key},
		nowMs, window.Milliseconds(), limit, member).Int()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error evaluating sliding window for key %s: %v", key, err))
		return false, err
	}

	allowed := res == 1
	if !allowed {
		logrus.Debug(fmt.Sprintf("Sliding window full for key %s", key))
	}
	return allowed, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
