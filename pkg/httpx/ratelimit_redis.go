package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a fixed-window LimiterStore shared by every replica talking
// to the same Redis. Burst is not meaningful for a fixed window and is ignored.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore returns a LimiterStore keeping counters under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, time.Duration, error) {
	now := s.now()
	window := now.UnixMilli() / config.Window.Milliseconds()
	redisKey := fmt.Sprintf("%s:%s:%s:%d", s.prefix, config.Name, key, window)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, config.Window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("redis rate limit: %w", err)
	}

	if incr.Val() <= int64(config.RequestsPerWindow) {
		return true, 0, nil
	}
	windowEnd := time.UnixMilli((window + 1) * config.Window.Milliseconds())
	return false, windowEnd.Sub(now), nil
}
