package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	// WithTimeout returns a derived client; the original is unchanged
	r = r.WithTimeout(2 * time.Second)
	return r
}

// SetNXOnce claims key for ttl; false means someone else already holds it.
func SetNXOnce(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, "1", ttl).Result()
}
