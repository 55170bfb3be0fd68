package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	gocache "github.com/patrickmn/go-cache"
)

// CacheBackend is the remote cache the store writes through to.
// Satisfied by RedisService.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// CacheStore is the degrade-safe cache tier shared by the session mirror
// and the NLP result caches. Every operation swallows backend errors and
// behaves like a miss: the system stays correct without a cache, only
// slower. When no backend is configured it falls back to an in-process
// cache.
type CacheStore struct {
	backend CacheBackend
	local   *gocache.Cache
}

// NewCacheStore creates a cache store over a backend. Pass nil to run on
// the in-process fallback only.
func NewCacheStore(backend CacheBackend) *CacheStore {
	store := &CacheStore{backend: backend}
	if backend == nil {
		store.local = gocache.New(time.Hour, 10*time.Minute)
		slog.Warn("cache running on in-process fallback, no Redis configured")
	}
	return store
}

// Get returns the cached value for key, or ok=false on miss or backend
// failure.
func (c *CacheStore) Get(ctx context.Context, key string) (string, bool) {
	if c.backend == nil {
		if value, found := c.local.Get(key); found {
			return value.(string), true
		}
		return "", false
	}

	value, err := c.backend.Get(ctx, key)
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Debug("cache read failed, treating as miss", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Set stores value under key for ttl. Failures are logged and dropped.
func (c *CacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.backend == nil {
		c.local.Set(key, value, ttl)
		return
	}

	if err := c.backend.Set(ctx, key, value, ttl); err != nil {
		slog.Debug("cache write failed, dropping entry", "key", key, "error", err)
	}
}

// Delete evicts key. Failures are logged and dropped.
func (c *CacheStore) Delete(ctx context.Context, key string) {
	if c.backend == nil {
		c.local.Delete(key)
		return
	}

	if err := c.backend.Delete(ctx, key); err != nil {
		slog.Debug("cache delete failed", "key", key, "error", err)
	}
}

// Healthy reports whether the cache backend is reachable. The in-process
// fallback is always healthy.
func (c *CacheStore) Healthy(ctx context.Context) bool {
	if c.backend == nil {
		return true
	}
	return c.backend.Ping(ctx) == nil
}
