package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/pricing"
	"github.com/pressgate/broker-api/internal/repository"
)

// JobService owns job creation, editing and the cached profit split.
// Routing is classified exactly once at creation; every financial edit
// triggers a recompute of the split through RecomputeProfit.
type JobService struct {
	jobRepo      *repository.JobRepository
	lineItemRepo *repository.LineItemRepository
	poRepo       *repository.PurchaseOrderRepository
	splitRepo    *repository.ProfitSplitRepository
	customerRepo *repository.CustomerRepository
	vendorRepo   *repository.VendorRepository
	sequenceRepo *repository.NumberSequenceRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
	db           *gorm.DB
}

// NewJobService creates a JobService
func NewJobService(
	jobRepo *repository.JobRepository,
	lineItemRepo *repository.LineItemRepository,
	poRepo *repository.PurchaseOrderRepository,
	splitRepo *repository.ProfitSplitRepository,
	customerRepo *repository.CustomerRepository,
	vendorRepo *repository.VendorRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *JobService {
	return &JobService{
		jobRepo:      jobRepo,
		lineItemRepo: lineItemRepo,
		poRepo:       poRepo,
		splitRepo:    splitRepo,
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		sequenceRepo: sequenceRepo,
		activityRepo: activityRepo,
		logger:       logger,
		db:           db,
	}
}

// Create creates a job, classifies its routing and assigns a job number.
func (s *JobService) Create(ctx context.Context, req *domain.CreateJobRequest) (*domain.JobDTO, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, domain.NewValidationError("customerId", "must be a valid UUID")
	}
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	var vendor *domain.Vendor
	var vendorID *uuid.UUID
	if req.VendorID != "" {
		id, err := uuid.Parse(req.VendorID)
		if err != nil {
			return nil, domain.NewValidationError("vendorId", "must be a valid UUID")
		}
		vendor, err = s.vendorRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVendorNotFound
			}
			return nil, fmt.Errorf("failed to get vendor: %w", err)
		}
		vendorID = &id
	}

	sellPrice, err := domain.ParseDecimal(req.SellPrice)
	if err != nil {
		return nil, domain.NewValidationError("sellPrice", "must be a decimal number")
	}

	jobNumber, err := s.generateJobNumber(ctx)
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		JobNumber:    jobNumber,
		Title:        req.Title,
		CustomerID:   customerID,
		CustomerName: customer.Name,
		VendorID:     vendorID,
		RoutingType:  classifyRouting(vendor, req.DirectToShop),
		Quantity:     req.Quantity,
		SellPrice:    sellPrice,
		FinishedSize: req.FinishedSize,
		Status:       domain.JobStatusNew,
		Notes:        req.Notes,
		Version:      1,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// A positive sell price is enough to compute the split already at
	// creation; otherwise the split waits for pricing input.
	if _, err := s.RecomputeProfit(ctx, job.ID); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Warn("failed to compute profit split after create", zap.Error(err))
		}
	}

	job, err = s.jobRepo.GetByID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job.ID, job.Title, "Job created",
		fmt.Sprintf("Job %s created for %s, routed %s", job.JobNumber, job.CustomerName, job.RoutingType))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// classifyRouting picks the routing path from the vendor at creation time.
// The result is stored on the job and never reclassified, so flipping a
// vendor's partner flag later has no effect on existing jobs.
func classifyRouting(vendor *domain.Vendor, directToShop bool) domain.RoutingType {
	if vendor != nil && vendor.IsPreferredPartner {
		return domain.RoutingPartner
	}
	if directToShop {
		return domain.RoutingDirect
	}
	return domain.RoutingThirdParty
}

func (s *JobService) generateJobNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	seq, err := s.sequenceRepo.Next(ctx, fmt.Sprintf("job-%d", year))
	if err != nil {
		return "", fmt.Errorf("failed to generate job number: %w", err)
	}
	return fmt.Sprintf("J-%d-%04d", year, seq), nil
}

// Get returns a job with all relations.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// List returns a page of jobs.
func (s *JobService) List(ctx context.Context, page, pageSize int, filter repository.JobListFilter) (*domain.PaginatedResponse, error) {
	jobs, total, err := s.jobRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Search returns jobs matching a free-text query on title or job number.
func (s *JobService) Search(ctx context.Context, query string, limit int) ([]domain.JobDTO, error) {
	jobs, err := s.jobRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}
	return dtos, nil
}

// Update applies editable fields under optimistic locking and recomputes the
// profit split when a financial input changed. Routing type is immutable.
func (s *JobService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateJobRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	financialChange := false

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Notes != nil {
		job.Notes = *req.Notes
	}
	if req.VendorID != nil {
		vendorID, err := uuid.Parse(*req.VendorID)
		if err != nil {
			return nil, domain.NewValidationError("vendorId", "must be a valid UUID")
		}
		if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVendorNotFound
			}
			return nil, fmt.Errorf("failed to get vendor: %w", err)
		}
		// Vendor reassignment does not reclassify routing.
		job.VendorID = &vendorID
	}
	if req.Quantity != nil {
		job.Quantity = *req.Quantity
		financialChange = true
	}
	if req.SellPrice != nil {
		sellPrice, err := domain.ParseDecimal(*req.SellPrice)
		if err != nil {
			return nil, domain.NewValidationError("sellPrice", "must be a decimal number")
		}
		job.SellPrice = sellPrice
		financialChange = true
	}
	if req.FinishedSize != nil {
		job.FinishedSize = *req.FinishedSize
		financialChange = true
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, req.Version); err != nil {
		return nil, err
	}

	if financialChange {
		if _, err := s.RecomputeProfit(ctx, id); err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				s.logger.Warn("failed to recompute profit split after update", zap.Error(err))
			}
		}
	}

	job, err = s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job.ID, job.Title, "Job updated",
		fmt.Sprintf("Job %s updated", job.JobNumber))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// Delete soft-deletes a job; the financial history stays in the database.
func (s *JobService) Delete(ctx context.Context, id uuid.UUID) error {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to get job: %w", err)
	}

	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	s.logActivity(ctx, id, job.Title, "Job deleted",
		fmt.Sprintf("Job %s deleted", job.JobNumber))
	return nil
}

// SetIntermediaryCut sets, clears or automates the intermediary cut on a
// direct or third-party routed job, then recomputes the split.
func (s *JobService) SetIntermediaryCut(ctx context.Context, id uuid.UUID, req *domain.SetIntermediaryCutRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.RoutingType == domain.RoutingPartner {
		return nil, ErrCutNotApplicable
	}

	var cut *decimal.Decimal
	if req.Amount != nil {
		parsed, err := domain.ParseDecimal(*req.Amount)
		if err != nil {
			return nil, domain.NewValidationError("amount", "must be a decimal number")
		}
		if parsed.Sign() < 0 {
			return nil, domain.NewValidationError("amount", "must not be negative")
		}
		cut = &parsed
	}

	job.IntermediaryCut = cut
	job.CutIsAuto = req.Auto

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	warnings, err := s.RecomputeProfit(ctx, id)
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
	}
	if len(warnings) > 0 {
		s.logger.Info("profit split recomputed with warnings",
			zap.String("job_id", id.String()),
			zap.Strings("warnings", warnings))
	}

	job, err = s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// RecomputeProfit rebuilds the cached profit split from the job's current
// inputs. A validation failure (no sell price yet) clears any stale cached
// split and is returned to the caller; other services treat it as "not
// priced yet" while the explicit compute endpoint surfaces it.
func (s *JobService) RecomputeProfit(ctx context.Context, jobID uuid.UUID) ([]string, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	lineItems, err := s.lineItemRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	purchaseOrders, err := s.poRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	result, err := pricing.ComputeProfitSplit(pricing.SplitInput{
		RoutingType:     job.RoutingType,
		Quantity:        job.Quantity,
		SellPrice:       job.SellPrice,
		FinishedSize:    job.FinishedSize,
		LineItems:       lineItems,
		PurchaseOrders:  purchaseOrders,
		IntermediaryCut: job.IntermediaryCut,
		CutIsAuto:       job.CutIsAuto,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			if derr := s.splitRepo.DeleteByJob(ctx, jobID); derr != nil {
				s.logger.Warn("failed to clear stale profit split", zap.Error(derr))
			}
		}
		return nil, err
	}

	split := result.Split
	split.JobID = jobID
	if err := s.splitRepo.Upsert(ctx, &split); err != nil {
		return nil, fmt.Errorf("failed to store profit split: %w", err)
	}

	if len(result.Warnings) > 0 {
		s.logger.Warn("profit split computed with warnings",
			zap.String("job_id", jobID.String()),
			zap.String("job_number", job.JobNumber),
			zap.Strings("warnings", result.Warnings))
	}

	return result.Warnings, nil
}

// GetProfitSplit recomputes and returns the split for a job. The explicit
// endpoint always recomputes so clients never read a stale cache.
func (s *JobService) GetProfitSplit(ctx context.Context, jobID uuid.UUID) (*domain.ProfitSplitDTO, error) {
	warnings, err := s.RecomputeProfit(ctx, jobID)
	if err != nil {
		return nil, err
	}
	split, err := s.splitRepo.GetByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profit split: %w", err)
	}
	dto := mapper.ToProfitSplitDTO(split, warnings)
	return &dto, nil
}

// logActivity writes a job activity entry; failures are logged, never fatal.
func (s *JobService) logActivity(ctx context.Context, jobID uuid.UUID, jobTitle, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetJob,
		TargetID:   jobID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID
		activity.CreatorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity",
			zap.String("job_id", jobID.String()),
			zap.String("job_title", jobTitle),
			zap.Error(err))
	}
}
