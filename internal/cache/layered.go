package cache

import (
	"context"

	"github.com/JustJay7/courtdle-api/internal/models"
)

// Layered serves reads from an in-memory front and falls back to a
// persistent store, back-filling the front on a hit.
type Layered struct {
	front   *MemoryCache
	back    BatchCache
	backend string
}

func NewLayered(front *MemoryCache, back BatchCache, backend string) *Layered {
	return &Layered{front: front, back: back, backend: backend}
}

func (l *Layered) Get(ctx context.Context, key string) (*models.Batch, error) {
	if batch, _ := l.front.Get(ctx, key); batch != nil {
		return batch, nil
	}

	batch, err := l.back.Get(ctx, key)
	if err != nil || batch == nil {
		return nil, err
	}

	_ = l.front.Put(ctx, key, batch)
	return batch, nil
}

// Put always updates the front; only the persistent write's error is returned.
func (l *Layered) Put(ctx context.Context, key string, batch *models.Batch) error {
	_ = l.front.Put(ctx, key, batch)
	return l.back.Put(ctx, key, batch)
}

// Clear empties the front, then the persistent store when it supports it.
func (l *Layered) Clear(ctx context.Context) error {
	_ = l.front.Clear(ctx)
	if c, ok := l.back.(Clearer); ok {
		return c.Clear(ctx)
	}
	return nil
}

func (l *Layered) Stats() CacheStats {
	stats := l.front.Stats()
	stats.Backend = l.backend
	return stats
}
