package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// missingMarker caches the absence of an admin rate
const missingMarker = "-"

// Cache is the key/value cache behind a CachedStore
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache stores cached rates in Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr
func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

// Ping checks the connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Get returns the cached value for key; a missing key is not an error
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key, expiring after ttl when ttl is positive
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys in a single DEL
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// MemoryCache is an in-process Cache; entries expire lazily
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value for key, dropping it if it has expired
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key; a ttl of zero never expires
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Delete removes keys
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// CachedStore serves rate lookups from a Cache and writes through to the
// wrapped Store, invalidating the cached key on every change.
type CachedStore struct {
	store  Store
	cache  Cache
	ttl    time.Duration
	prefix string
}

// NewCachedStore wraps store with cache; ttl of zero means no expiry
func NewCachedStore(store Store, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		prefix: "fincalc:rate:",
	}
}

func (c *CachedStore) cacheKey(key string) string {
	return c.prefix + key
}

// Rate implements Lookup. Cache failures fall through to the store.
func (c *CachedStore) Rate(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	if raw, ok, err := c.cache.Get(ctx, c.cacheKey(key)); err == nil && ok {
		if raw == missingMarker {
			return decimal.Zero, false, nil
		}
		if v, perr := decimal.NewFromString(raw); perr == nil {
			return v, true, nil
		}
	}
	return c.load(ctx, key)
}

func (c *CachedStore) load(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	v, ok, err := c.store.Rate(ctx, key)
	if err != nil {
		return decimal.Zero, false, err
	}
	raw := missingMarker
	if ok {
		raw = v.String()
	}
	// a failed cache write only costs a future store read
	_ = c.cache.Set(ctx, c.cacheKey(key), raw, c.ttl)
	return v, ok, nil
}

// Warm reloads keys from the store into the cache
func (c *CachedStore) Warm(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, _, err := c.load(ctx, k); err != nil {
			return fmt.Errorf("failed to warm rate %s: %w", k, err)
		}
	}
	return nil
}

// Invalidate drops keys from the cache
func (c *CachedStore) Invalidate(ctx context.Context, keys ...string) error {
	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = c.cacheKey(k)
	}
	return c.cache.Delete(ctx, cacheKeys...)
}

// SetRate writes through to the store and invalidates the cached key
func (c *CachedStore) SetRate(ctx context.Context, key string, value decimal.Decimal) error {
	if err := c.store.SetRate(ctx, key, value); err != nil {
		return err
	}
	return c.Invalidate(ctx, key)
}

// DeleteRate removes key from the store and the cache
func (c *CachedStore) DeleteRate(ctx context.Context, key string) (bool, error) {
	ok, err := c.store.DeleteRate(ctx, key)
	if err != nil {
		return false, err
	}
	return ok, c.Invalidate(ctx, key)
}

// ListRates always reads the store; listings are not cached
func (c *CachedStore) ListRates(ctx context.Context) ([]Entry, error) {
	return c.store.ListRates(ctx)
}
