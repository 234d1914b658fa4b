package iocache

import (
	"fmt"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
	"github.com/maypok86/otter"
)

// cacheEntry is one value held in memory together with its metadata.
type cacheEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemoryCacheStore fronts a durable CacheStore with a bounded in-memory LRU.
// Writes go to both tiers; reads fill the memory tier on a durable hit.
type MemoryCacheStore struct {
	next  contract.CacheStore
	cache otter.Cache[string, cacheEntry]
}

var _ contract.CacheStore = &MemoryCacheStore{} // Compile-time check

// NewMemoryCacheStore wraps next with an LRU bounded to maxEntries.
// Capacities below contract.MinCacheSize are raised to it; otter admits
// nothing when its admission queue rounds down to zero.
func NewMemoryCacheStore(next contract.CacheStore, maxEntries int) (*MemoryCacheStore, error) {
	maxEntries = max(maxEntries, contract.MinCacheSize)
	cache, err := otter.MustBuilder[string, cacheEntry](maxEntries).
		Cost(func(_ string, _ cacheEntry) uint32 { return 1 }).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCacheStore{next: next, cache: cache}, nil
}

// Get returns the in-memory entry when present and falls through to the durable store otherwise.
func (ms *MemoryCacheStore) Get(key string) ([]byte, int, int64, error) {
	if e, ok := ms.cache.Get(key); ok {
		return e.value, e.version, e.timestamp, nil
	}

	value, version, ts, err := ms.next.Get(key)
	if err != nil {
		return nil, 0, 0, err
	}
	ms.cache.Set(key, cacheEntry{value: value, version: version, timestamp: ts})
	return value, version, ts, nil
}

// Set writes through to both tiers.
func (ms *MemoryCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ms.cache.Set(key, cacheEntry{value: value, version: version, timestamp: timestamp})
	return ms.next.Set(key, value, version, timestamp)
}

// GetStatus reports the durable store status plus the number of in-memory entries.
func (ms *MemoryCacheStore) GetStatus() (schema.CacheStatus, error) {
	status, err := ms.next.GetStatus()
	status.MemoryEntries = ms.cache.Size()
	return status, err
}

// Close releases the memory tier and closes the durable store.
func (ms *MemoryCacheStore) Close() error {
	ms.cache.Close()
	return ms.next.Close()
}
