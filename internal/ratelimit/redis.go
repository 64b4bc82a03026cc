package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketKeyPrefix namespaces limiter counters in redis.
const bucketKeyPrefix = "rl:checkin:"

// Redis is a fixed-window store shared across instances. The window is
// approximate at its boundary, which is acceptable for abuse protection;
// single-instance setups can use InMemory for exact sliding windows.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	redisKey := bucketKeyPrefix + key

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("increment rate limit bucket: %w", err)
	}

	resetAt := time.Now().Add(ttl.Val())
	n := int(count.Val())
	if n > limit {
		return &Result{Allowed: false, Limit: limit, ResetAt: resetAt}, nil
	}
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - n,
		ResetAt:   resetAt,
	}, nil
}
