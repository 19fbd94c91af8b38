package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
)

type LineItemRepository struct {
	db *gorm.DB
}

func NewLineItemRepository(db *gorm.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

func (r *LineItemRepository) Create(ctx context.Context, item *domain.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *LineItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LineItem, error) {
	var item domain.LineItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LineItemRepository) Update(ctx context.Context, item *domain.LineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *LineItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LineItem{}, "id = ?", id).Error
}

func (r *LineItemRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
