package cache

import (
	"context"
	"errors"
	"time"

	"github.com/JustJay7/courtdle-api/internal/models"
)

// ErrMalformed marks persisted cache state that could not be decoded.
// Callers treat it as a miss.
var ErrMalformed = errors.New("malformed cache state")

// BatchCache stores one batch of case summaries per key. Keys are calendar
// dates (see DateKey). Get returns nil, nil on a miss, including when the
// stored batch carries a different date than key. Put overwrites whatever
// was stored and stamps the batch with key.
type BatchCache interface {
	Get(ctx context.Context, key string) (*models.Batch, error)
	Put(ctx context.Context, key string, batch *models.Batch) error
}

// Clearer is implemented by caches that can drop everything they hold.
type Clearer interface {
	Clear(ctx context.Context) error
}

type CacheStats struct {
	Backend    string    `json:"backend"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

// StatsReporter is implemented by caches that track hit rates.
type StatsReporter interface {
	Stats() CacheStats
}

// DateKey is the cache key for the day t falls on.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func stamp(key string, batch *models.Batch) *models.Batch {
	out := &models.Batch{Date: key}
	if batch != nil {
		out.CasesInfo = batch.CasesInfo
	}
	if out.CasesInfo == nil {
		out.CasesInfo = []models.CaseSummary{}
	}
	return out
}
