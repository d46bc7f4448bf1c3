package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "novelhub:settings:" + GlobalKey

type Cache interface {
	// Get reports false on a miss.
	Get(ctx context.Context) (*SiteSettings, bool, error)
	Set(ctx context.Context, s *SiteSettings) error
	Invalidate(ctx context.Context) error
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) (*SiteSettings, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var s SiteSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *redisCache) Set(ctx context.Context, s *SiteSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey, data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, cacheKey).Err()
}
