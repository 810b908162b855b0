// Package cache is a key-value read-through cache with per-key TTLs.
//
// Two drivers are available: redis (production) and memory (tests, or
// running without a Redis instance). The Cache is an explicit dependency:
// construct it once at boot and share it by reference.
//
//	c := cache.New(cache.NewRedisStore(addr, password))
//	products, err := cache.Remember(c, "products_all", time.Minute, fetchAll)
//	c.Forget("products_all")
package cache

import (
	"time"
)

// Store is the key-value backend a Cache writes through to.
type Store interface {
	// Get unmarshals the value under key into dest.
	// Returns true on a hit, false on miss, expiry, or backend error.
	Get(key string, dest interface{}) bool

	// Set stores value under key for the given TTL.
	Set(key string, value interface{}, ttl time.Duration) error

	// Del removes keys. Missing keys are not an error.
	Del(keys ...string) error
}

// Cache wraps a Store with remember/forget semantics.
type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// Remember returns the cached value under key if present and unexpired;
// otherwise it invokes produce, stores the result for ttl, and returns it.
// A failed cache write does not fail the call; the produced value wins.
func Remember[T any](c *Cache, key string, ttl time.Duration, produce func() (T, error)) (T, error) {
	var cached T
	if c.store.Get(key, &cached) {
		return cached, nil
	}

	value, err := produce()
	if err != nil {
		return value, err
	}

	_ = c.store.Set(key, value, ttl)
	return value, nil
}

// Forget removes keys unconditionally. A miss is not an error.
func (c *Cache) Forget(keys ...string) {
	_ = c.store.Del(keys...)
}

// Get reads key directly from the backing store, bypassing remember.
func (c *Cache) Get(key string, dest interface{}) bool {
	return c.store.Get(key, dest)
}

// Put stores value under key for ttl, bypassing remember.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) error {
	return c.store.Set(key, value, ttl)
}
