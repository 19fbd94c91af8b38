package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository backs job number generation. One row per sequence
// key; job numbers use a per-year key so numbering restarts each January.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// Next atomically retrieves and increments the sequence for a key.
// A row lock inside the transaction keeps concurrent callers from handing
// out the same number. A missing sequence starts at 1.
func (r *NumberSequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Key:       key,
				NextValue: 2,
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		next = seq.NextValue
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"next_value": next + 1,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// Peek returns the next value without consuming it, or 1 when the sequence
// does not exist yet.
func (r *NumberSequenceRepository) Peek(ctx context.Context, key string) (int64, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).Where("key = ?", key).First(&seq)
	if result.Error == gorm.ErrRecordNotFound {
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.NextValue, nil
}
