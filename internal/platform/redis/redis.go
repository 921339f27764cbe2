// Package redis adapts go-redis to the book cache port.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores values in a hash with a "data" field so entries can carry
// bookkeeping fields next to the payload.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewClient connects to a single node or, given a comma separated list, a
// cluster.
func NewClient(addrs string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        strings.Split(addrs, ","),
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
}

func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.HGet(ctx, key, "data").Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value string) error {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"data":      value,
		"cached_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetNX stores value only if key holds no entry. The expiry is set with NX
// too, so a refused fill never extends the life of the existing entry.
// EXPIRE NX needs Redis 7.
func (c *Cache) SetNX(ctx context.Context, key string, value string) (bool, error) {
	pipe := c.client.TxPipeline()
	created := pipe.HSetNX(ctx, key, "data", value)
	pipe.HSetNX(ctx, key, "cached_at", time.Now().Unix())
	pipe.ExpireNX(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return created.Val(), nil
}

// Ping reports whether the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
