package repository

import (
	"context"

	"caradmin/internal/domain"

	"gorm.io/gorm"
)

type FeedExportRepository struct {
	db *gorm.DB
}

func NewFeedExportRepository(db *gorm.DB) *FeedExportRepository {
	return &FeedExportRepository{db: db}
}

func (r *FeedExportRepository) Create(ctx context.Context, e *domain.FeedExport) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// List returns the most recent exports first.
func (r *FeedExportRepository) List(ctx context.Context, limit int) ([]domain.FeedExport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.FeedExport
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Latest returns the newest export, or nil when there is none.
func (r *FeedExportRepository) Latest(ctx context.Context) (*domain.FeedExport, error) {
	var out []domain.FeedExport
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
