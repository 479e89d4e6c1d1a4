package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/internal/storage"
)

// FileCache persists a single batch document, {"date": ..., "cases_info": [...]},
// under one storage key. Only the most recent batch is kept.
type FileCache struct {
	store storage.Storage
	name  string
	mu    sync.Mutex
}

func NewFileCache(store storage.Storage, name string) *FileCache {
	if name == "" {
		name = "cases_cache.json"
	}
	return &FileCache{store: store, name: name}
}

func (c *FileCache) Get(ctx context.Context, key string) (*models.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rc, err := c.store.Read(ctx, c.name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}

	var batch models.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, c.name, err)
	}
	if batch.Date == "" {
		return nil, fmt.Errorf("%w: %s has no date", ErrMalformed, c.name)
	}

	if batch.Date != key {
		return nil, nil
	}
	if batch.CasesInfo == nil {
		batch.CasesInfo = []models.CaseSummary{}
	}
	return &batch, nil
}

// Clear removes the cache document. Clearing an absent document succeeds.
func (c *FileCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.name); err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	return nil
}

func (c *FileCache) Put(ctx context.Context, key string, batch *models.Batch) error {
	data, err := json.Marshal(stamp(key, batch))
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Write(ctx, c.name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	return nil
}
