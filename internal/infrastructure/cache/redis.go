package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const countKey = "customers:count:total"

// RedisCountCache keeps the total customer count under one key with a TTL.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{client: client, ttl: ttl}
}

func (c *RedisCountCache) Get(ctx context.Context) (int64, bool, error) {
	raw, err := c.client.Get(ctx, countKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get cached count: %w", err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached count %q: %w", raw, err)
	}
	return count, true, nil
}

func (c *RedisCountCache) Set(ctx context.Context, count int64) error {
	if err := c.client.Set(ctx, countKey, count, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached count: %w", err)
	}
	return nil
}

func (c *RedisCountCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, countKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached count: %w", err)
	}
	return nil
}
