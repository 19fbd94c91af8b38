package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pressgate/broker-api/internal/domain"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vendor").
		Preload("LineItems").
		Preload("PurchaseOrders").
		Preload("Components").
		Preload("ProfitSplit").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByJobNumber(ctx context.Context, jobNumber string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vendor").
		Where("job_number = ?", jobNumber).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateWithVersion saves the job only if its stored version still matches
// expectedVersion, bumping the version in the same statement. A stale writer
// matches zero rows and gets a conflict error instead of silently merging.
func (r *JobRepository) UpdateWithVersion(ctx context.Context, job *domain.Job, expectedVersion int) error {
	job.Version = expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND version = ?", job.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(job)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("job")
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Job{}, "id = ?", id).Error
}

// JobListFilter narrows the job list
type JobListFilter struct {
	CustomerID  *uuid.UUID
	VendorID    *uuid.UUID
	RoutingType *domain.RoutingType
	Status      *domain.JobStatus
}

func (r *JobRepository) List(ctx context.Context, page, pageSize int, filter JobListFilter) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Job{}).Preload("Customer").Preload("Vendor")

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.RoutingType != nil {
		query = query.Where("routing_type = ?", *filter.RoutingType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&jobs).Error

	return jobs, total, err
}

func (r *JobRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("LOWER(title) LIKE ? OR LOWER(job_number) LIKE ?", searchPattern, searchPattern).
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// ListAwaitingDownstreamInvoice returns jobs whose intermediary payment is
// recorded but whose downstream invoice dispatch never succeeded.
func (r *JobRepository) ListAwaitingDownstreamInvoice(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("partner_paid_at IS NOT NULL AND downstream_invoice_sent_at IS NULL").
		Order("partner_paid_at ASC").
		Find(&jobs).Error
	return jobs, err
}

// ListInvoicedUnpaid returns jobs in the invoiced stage without a recorded
// customer payment, for ERP reconciliation.
func (r *JobRepository) ListInvoicedUnpaid(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("invoice_sent_at IS NOT NULL AND customer_paid_at IS NULL").
		Order("invoice_sent_at ASC").
		Find(&jobs).Error
	return jobs, err
}
