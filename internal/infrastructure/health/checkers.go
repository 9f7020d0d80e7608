package health

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/avatarctic/placeproxy/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// cacheHealthChecker round-trips a probe value through the result cache.
type cacheHealthChecker struct{ cache ports.Cache }

const cacheProbeKey = "health:probe"

func (c *cacheHealthChecker) Name() string { return "cache" }

func (c *cacheHealthChecker) Check(ctx context.Context) error {
	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := c.cache.Set(ctx, cacheProbeKey, want, time.Minute); err != nil {
		return err
	}
	got, ok, err := c.cache.Get(ctx, cacheProbeKey)
	if err != nil {
		return err
	}
	if !ok || !bytes.Equal(got, want) {
		return fmt.Errorf("cache probe value not read back")
	}
	return c.cache.Delete(ctx, cacheProbeKey)
}

// NewCacheHealthChecker creates a health checker for any ports.Cache backend.
func NewCacheHealthChecker(cache ports.Cache) ports.HealthChecker {
	return &cacheHealthChecker{cache: cache}
}
