package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"storefront/internal/pkg/redis"
	"storefront/internal/service/shipping/domain/port"
)

// RedisRateCache 是 port.RateCache 的 Redis 实现
type RedisRateCache struct {
	client *redis.Client
}

func NewRedisRateCache(client *redis.Client) *RedisRateCache {
	return &RedisRateCache{client: client}
}

func (c *RedisRateCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, port.ErrCacheMiss
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (c *RedisRateCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Wrap(c.client.SetBytes(ctx, key, value, ttl), "redis set")
}
