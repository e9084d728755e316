package gamificationsvc

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache adapts a go-redis client to the Cache interface.
type redisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) Cache { return &redisCache{rdb: rdb} }

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// NopCache always misses. It keeps the service usable when Redis is not
// configured.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (NopCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return nil
}
func (NopCache) Del(ctx context.Context, key string) error { return nil }
