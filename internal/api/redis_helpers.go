package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// quotaCounter is the slice of the redis client the throttled handlers
// depend on: the hourly login limiter and the daily photo upload quota.
type quotaCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// bumpQuota increments a windowed counter and arms the expiry on the
// window's first hit. Callers compare the returned count to their limit.
func bumpQuota(ctx context.Context, client quotaCounter, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, window).Err()
	}
	return count, nil
}
