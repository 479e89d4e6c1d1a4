package cache

import (
	"context"
	"sync"
	"time"

	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/patrickmn/go-cache"
)

// MemoryCache keeps recent batches in process memory with a TTL.
type MemoryCache struct {
	cache   *cache.Cache
	mu      sync.Mutex
	stats   CacheStats
	maxSize int
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
		stats:   CacheStats{Backend: "memory"},
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*models.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if batch, ok := data.(*models.Batch); ok && batch.Date == key {
			c.stats.Hits++
			return batch, nil
		}
	}

	c.stats.Misses++
	return nil, nil
}

func (c *MemoryCache) Put(ctx context.Context, key string, batch *models.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, stamp(key, batch), cache.DefaultExpiration)
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	return nil
}

func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Size = c.cache.ItemCount()
	return c.stats
}

// removeOldest evicts the entry closest to expiry, which is the one written
// first since all entries share the same TTL.
func (c *MemoryCache) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldestExpiration int64

	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldestExpiration {
			oldestKey = key
			oldestExpiration = item.Expiration
		}
	}

	c.cache.Delete(oldestKey)
}
