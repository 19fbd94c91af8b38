package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
)

type ArtworkFileRepository struct {
	db *gorm.DB
}

func NewArtworkFileRepository(db *gorm.DB) *ArtworkFileRepository {
	return &ArtworkFileRepository{db: db}
}

func (r *ArtworkFileRepository) Create(ctx context.Context, file *domain.ArtworkFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *ArtworkFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ArtworkFile, error) {
	var file domain.ArtworkFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *ArtworkFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ArtworkFile{}, "id = ?", id).Error
}

func (r *ArtworkFileRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ArtworkFile, error) {
	var files []domain.ArtworkFile
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

func (r *ArtworkFileRepository) CountByJobAndKind(ctx context.Context, jobID uuid.UUID, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ArtworkFile{}).
		Where("job_id = ? AND kind = ?", jobID, kind).
		Count(&count).Error
	return count, err
}
