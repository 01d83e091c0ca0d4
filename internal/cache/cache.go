// Package cache provides a namespaced, read-through, TTL-based in-memory cache.
//
// The cache sits in front of the database so token verification does not pay
// for a multi-table join on every request. State is process-local and is not
// synchronized across instances: hit rate and staleness window are per-instance.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a namespaced key/value store with per-entry absolute expiry.
//
// Injectable so a redesign can swap the in-memory map for a distributed store
// without changing call sites.
type Cache interface {
	// Get returns the cached value for (namespace, key). An expired entry is
	// treated as a miss. The stored value may legitimately be nil.
	Get(namespace, key string) (any, bool)

	// Set stores the value under (namespace, key) with expiry now+TTL.
	Set(namespace, key string, value any)

	// Delete removes the entry for (namespace, key).
	Delete(namespace, key string)

	// FetchOrPopulate returns the cached value, or runs populate and caches
	// its result (including a nil "negative" result, so nonexistent lookups
	// do not hammer the database).
	//
	// Not single-flight: concurrent misses for the same key each invoke
	// populate independently and each write the result. Callers must not
	// assume at-most-once execution; populate must be a pure read.
	FetchOrPopulate(
		ctx context.Context,
		namespace, key string,
		populate func(ctx context.Context) (any, error),
	) (any, error)
}

// memoryCache implements Cache over patrickmn/go-cache with the background
// janitor disabled: expired entries are discarded lazily on access.
type memoryCache struct {
	store *gocache.Cache
}

// New creates an in-memory Cache whose entries expire defaultTTL after each write.
func New(defaultTTL time.Duration) Cache {
	return &memoryCache{
		// cleanup interval <= 0 disables the sweeper goroutine
		store: gocache.New(defaultTTL, 0),
	}
}

// entryKey builds the backing-store key for a namespaced entry.
func entryKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// Get returns the cached value, treating expired entries as misses.
func (m *memoryCache) Get(namespace, key string) (any, bool) {
	return m.store.Get(entryKey(namespace, key))
}

// Set stores the value with the cache's default TTL.
func (m *memoryCache) Set(namespace, key string, value any) {
	m.store.SetDefault(entryKey(namespace, key), value)
}

// Delete removes the entry.
func (m *memoryCache) Delete(namespace, key string) {
	m.store.Delete(entryKey(namespace, key))
}

// FetchOrPopulate reads through to populate on a miss and caches the result.
func (m *memoryCache) FetchOrPopulate(
	ctx context.Context,
	namespace, key string,
	populate func(ctx context.Context) (any, error),
) (any, error) {
	if value, found := m.Get(namespace, key); found {
		return value, nil
	}

	value, err := populate(ctx)
	if err != nil {
		return nil, err
	}

	// Negative results are cached too
	m.Set(namespace, key, value)

	return value, nil
}
