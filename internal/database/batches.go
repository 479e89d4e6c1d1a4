package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/JustJay7/courtdle-api/internal/models"
	"gorm.io/gorm"
)

// BatchRepository stores daily batches in sqlite, one row per date. It
// satisfies cache.BatchCache.
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Get(ctx context.Context, key string) (*models.Batch, error) {
	var row DailyBatch
	err := r.db.WithContext(ctx).Where("date = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", key, err)
	}

	cases := row.CasesInfo
	if cases == nil {
		cases = []models.CaseSummary{}
	}
	return &models.Batch{Date: row.Date, CasesInfo: cases}, nil
}

// Put replaces the row for key.
func (r *BatchRepository) Put(ctx context.Context, key string, batch *models.Batch) error {
	row := DailyBatch{Date: key, CasesInfo: []models.CaseSummary{}}
	if batch != nil && batch.CasesInfo != nil {
		row.CasesInfo = batch.CasesInfo
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("date = ?", key).Delete(&DailyBatch{}).Error; err != nil {
			return fmt.Errorf("clear batch %s: %w", key, err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("save batch %s: %w", key, err)
		}
		return nil
	})
}

// Clear hard-deletes every stored batch.
func (r *BatchRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&DailyBatch{}).Error; err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}
	return nil
}

// Prune hard-deletes batches older than keep most recent dates.
func (r *BatchRepository) Prune(ctx context.Context, keep int) (int64, error) {
	var dates []string
	if err := r.db.WithContext(ctx).Model(&DailyBatch{}).
		Order("date DESC").Limit(keep).Pluck("date", &dates).Error; err != nil {
		return 0, fmt.Errorf("list batch dates: %w", err)
	}
	if len(dates) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Unscoped().Where("date NOT IN ?", dates).Delete(&DailyBatch{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune batches: %w", res.Error)
	}
	return res.RowsAffected, nil
}
