package geocode

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheCapacity bounds the place-name cache.
const DefaultCacheCapacity = 48

// gridDivisor quantizes coordinates to 1e-3 degrees (~111 m north-south), so
// samples close enough to share a place name collapse onto one cache key.
const gridDivisor = 1000

// CacheKey is a coordinate quantized to the cache grid.
type CacheKey struct {
	LatE3 int
	LngE3 int
}

// KeyFor quantizes a coordinate to its cache key.
func KeyFor(lat, lng float64) CacheKey {
	return CacheKey{
		LatE3: int(math.Round(lat * gridDivisor)),
		LngE3: int(math.Round(lng * gridDivisor)),
	}
}

// Cache is a bounded least-recently-used map from quantized coordinates to
// place names. Operations are in-memory and synchronous; it never grows past
// its capacity and evicts exactly one entry per overflowing insert.
type Cache struct {
	entries *lru.Cache[CacheKey, string]
}

// NewCache creates a cache with the given capacity; non-positive capacities
// fall back to DefaultCacheCapacity.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	entries, err := lru.New[CacheKey, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached name for the coordinate's grid cell and touches its
// recency.
func (c *Cache) Get(lat, lng float64) (string, bool) {
	return c.entries.Get(KeyFor(lat, lng))
}

// Insert stores the name for the coordinate's grid cell, evicting the least
// recently used entry when over capacity.
func (c *Cache) Insert(lat, lng float64, name string) {
	c.entries.Add(KeyFor(lat, lng), name)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
