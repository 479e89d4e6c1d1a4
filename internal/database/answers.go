package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type AnswerLogRepository struct {
	db *gorm.DB
}

func NewAnswerLogRepository(db *gorm.DB) *AnswerLogRepository {
	return &AnswerLogRepository{db: db}
}

func (r *AnswerLogRepository) Create(ctx context.Context, entry *AnswerLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("save answer log: %w", err)
	}
	return nil
}

// PageBounds clamps pagination parameters to the values List applies.
func PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = 10
	case limit > 100:
		limit = 100
	}
	return page, limit
}

// List returns one page of answer logs, newest first, plus the total count.
func (r *AnswerLogRepository) List(ctx context.Context, page, limit int) ([]AnswerLog, int64, error) {
	page, limit = PageBounds(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).Model(&AnswerLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count answer logs: %w", err)
	}

	var logs []AnswerLog
	if err := r.db.WithContext(ctx).
		Offset((page - 1) * limit).Limit(limit).
		Order("query_time DESC, id DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("list answer logs: %w", err)
	}
	return logs, total, nil
}

// Ping reports whether the database answers a trivial query.
func (r *AnswerLogRepository) Ping(ctx context.Context) bool {
	var count int64
	return r.db.WithContext(ctx).Model(&AnswerLog{}).Count(&count).Error == nil
}
