package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"contactsapi/internal/config"
)

// redisCache implements Cache on top of a go-redis client.
// It is safe for concurrent use by multiple goroutines.
type redisCache struct {
	client *goredis.Client
	prefix string
}

// NewRedis connects to Redis and verifies connectivity before returning.
func NewRedis(cfg config.RedisConfig) (Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  time.Duration(cfg.DialTimeoutSec) * time.Second,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{client: rdb, prefix: cfg.Prefix}, nil
}

func (c *redisCache) withPrefix(key string) string {
	return c.prefix + key
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.withPrefix(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.withPrefix(key), value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.withPrefix(key)).Err()
}

// Allow implements a fixed window: the first INCR in a window sets the
// expiry, later calls just compare the counter against the limit.
func (c *redisCache) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := c.withPrefix("ratelimit:" + key)

	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
