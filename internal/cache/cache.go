package cache

import (
	"context"
	"errors"
	"time"
)

// Package cache contains the Redis-backed key/value layer used for
// cache-aside reads and request rate limiting.

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a small façade over Redis. All keys are namespaced with a
// configurable prefix by the implementation.
type Cache interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Allow applies a fixed-window rate limit: it returns true while the
	// number of calls for key within the window stays at or below limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Ping verifies connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying connection pool.
	Close() error
}
