package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoaphan/careerframe/internal/application/service"
)

const profileCacheKeyPrefix = "public_profile:"

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) service.ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisProfileCache{client: client, ttl: ttl}
}

func (c *redisProfileCache) key(slug string) string {
	return profileCacheKeyPrefix + slug
}

func (c *redisProfileCache) Get(ctx context.Context, slug string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.key(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, service.ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get failed: %w", err)
	}
	return payload, nil
}

func (c *redisProfileCache) Set(ctx context.Context, slug string, payload []byte) error {
	if err := c.client.Set(ctx, c.key(slug), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (c *redisProfileCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, c.key(slug)).Err(); err != nil {
		return fmt.Errorf("cache invalidate failed: %w", err)
	}
	return nil
}
