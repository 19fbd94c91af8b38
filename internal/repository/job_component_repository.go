package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
)

type JobComponentRepository struct {
	db *gorm.DB
}

func NewJobComponentRepository(db *gorm.DB) *JobComponentRepository {
	return &JobComponentRepository{db: db}
}

func (r *JobComponentRepository) Create(ctx context.Context, component *domain.JobComponent) error {
	return r.db.WithContext(ctx).Create(component).Error
}

func (r *JobComponentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobComponent, error) {
	var component domain.JobComponent
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("id = ?", id).
		First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *JobComponentRepository) Update(ctx context.Context, component *domain.JobComponent) error {
	return r.db.WithContext(ctx).Save(component).Error
}

func (r *JobComponentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.JobComponent{}, "id = ?", id).Error
}

func (r *JobComponentRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.JobComponent, error) {
	var components []domain.JobComponent
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&components).Error
	return components, err
}
