package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfitSplitRepository struct {
	db *gorm.DB
}

func NewProfitSplitRepository(db *gorm.DB) *ProfitSplitRepository {
	return &ProfitSplitRepository{db: db}
}

// Upsert stores the computed split for a job, replacing any previous one.
// There is exactly one split row per job.
func (r *ProfitSplitRepository) Upsert(ctx context.Context, split *domain.ProfitSplit) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_id"}},
			UpdateAll: true,
		}).
		Create(split).Error
}

func (r *ProfitSplitRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (*domain.ProfitSplit, error) {
	var split domain.ProfitSplit
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&split).Error
	if err != nil {
		return nil, err
	}
	return &split, nil
}

// DeleteByJob removes the cached split, used when inputs become invalid
// (e.g. the sell price is cleared) rather than leaving a stale split behind.
func (r *ProfitSplitRepository) DeleteByJob(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProfitSplit{}, "job_id = ?", jobID).Error
}
