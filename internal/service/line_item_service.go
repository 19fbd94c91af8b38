package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/pricing"
	"github.com/pressgate/broker-api/internal/repository"
)

// LineItemService manages job line items. Cost, markup and price are linked;
// whichever field drives an edit recomputes its dependent field, and every
// mutation triggers a profit split recompute on the owning job.
type LineItemService struct {
	lineItemRepo *repository.LineItemRepository
	jobRepo      *repository.JobRepository
	activityRepo *repository.ActivityRepository
	jobService   *JobService
	logger       *zap.Logger
}

// NewLineItemService creates a LineItemService
func NewLineItemService(
	lineItemRepo *repository.LineItemRepository,
	jobRepo *repository.JobRepository,
	activityRepo *repository.ActivityRepository,
	jobService *JobService,
	logger *zap.Logger,
) *LineItemService {
	return &LineItemService{
		lineItemRepo: lineItemRepo,
		jobRepo:      jobRepo,
		activityRepo: activityRepo,
		jobService:   jobService,
		logger:       logger,
	}
}

// Add creates a line item on a job. When markup is given without a price the
// price is derived from cost and markup; when a price is given the markup is
// derived from cost and price.
func (s *LineItemService) Add(ctx context.Context, jobID uuid.UUID, req *domain.LineItemRequest) (*domain.LineItemDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	quantity, err := domain.ParseDecimal(req.Quantity)
	if err != nil {
		return nil, domain.NewValidationError("quantity", "must be a decimal number")
	}
	if quantity.Sign() < 0 {
		return nil, domain.NewValidationError("quantity", "must not be negative")
	}

	item := &domain.LineItem{
		JobID:       jobID,
		Description: req.Description,
		Quantity:    quantity,
	}

	if req.UnitCost != "" {
		cost, err := domain.ParseDecimal(req.UnitCost)
		if err != nil {
			return nil, domain.NewValidationError("unitCost", "must be a decimal number")
		}
		if err := pricing.ApplyLineItemEdit(item, pricing.LineItemFieldCost, cost); err != nil {
			return nil, err
		}
	}
	if req.MarkupPercent != "" {
		markup, err := domain.ParseDecimal(req.MarkupPercent)
		if err != nil {
			return nil, domain.NewValidationError("markupPercent", "must be a decimal number")
		}
		if err := pricing.ApplyLineItemEdit(item, pricing.LineItemFieldMarkup, markup); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != "" {
		price, err := domain.ParseDecimal(req.UnitPrice)
		if err != nil {
			return nil, domain.NewValidationError("unitPrice", "must be a decimal number")
		}
		if err := pricing.ApplyLineItemEdit(item, pricing.LineItemFieldPrice, price); err != nil {
			return nil, err
		}
	}

	if err := s.lineItemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create line item: %w", err)
	}

	s.recompute(ctx, jobID)
	s.logActivity(ctx, job, "Line item added",
		fmt.Sprintf("Line item %q added to job %s", item.Description, job.JobNumber))

	dto := mapper.ToLineItemDTO(item)
	return &dto, nil
}

// EditField applies a single driving edit to a line item and recomputes the
// dependent field plus the job's profit split.
func (s *LineItemService) EditField(ctx context.Context, itemID uuid.UUID, req *domain.LineItemEditRequest) (*domain.LineItemDTO, error) {
	item, err := s.lineItemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}

	value, err := domain.ParseDecimal(req.Value)
	if err != nil {
		return nil, domain.NewValidationError("value", "must be a decimal number")
	}
	if err := pricing.ApplyLineItemEdit(item, req.Field, value); err != nil {
		return nil, err
	}

	if err := s.lineItemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}

	s.recompute(ctx, item.JobID)

	dto := mapper.ToLineItemDTO(item)
	return &dto, nil
}

// Update replaces a line item's description and quantity. Pricing fields are
// edited through EditField so the cost/markup/price linkage stays consistent.
func (s *LineItemService) Update(ctx context.Context, itemID uuid.UUID, req *domain.LineItemRequest) (*domain.LineItemDTO, error) {
	item, err := s.lineItemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}

	quantity, err := domain.ParseDecimal(req.Quantity)
	if err != nil {
		return nil, domain.NewValidationError("quantity", "must be a decimal number")
	}
	if quantity.Sign() < 0 {
		return nil, domain.NewValidationError("quantity", "must not be negative")
	}

	item.Description = req.Description
	item.Quantity = quantity

	if err := s.lineItemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}

	s.recompute(ctx, item.JobID)

	dto := mapper.ToLineItemDTO(item)
	return &dto, nil
}

// Delete removes a line item and recomputes the job's split.
func (s *LineItemService) Delete(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.lineItemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineItemNotFound
		}
		return fmt.Errorf("failed to get line item: %w", err)
	}

	if err := s.lineItemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete line item: %w", err)
	}

	s.recompute(ctx, item.JobID)
	return nil
}

// List returns a job's line items.
func (s *LineItemService) List(ctx context.Context, jobID uuid.UUID) ([]domain.LineItemDTO, error) {
	items, err := s.lineItemRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	dtos := make([]domain.LineItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToLineItemDTO(&items[i])
	}
	return dtos, nil
}

// recompute refreshes the job's profit split. An unpriced job yields a
// validation error, which just means there is no split to cache yet.
func (s *LineItemService) recompute(ctx context.Context, jobID uuid.UUID) {
	if _, err := s.jobService.RecomputeProfit(ctx, jobID); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Warn("failed to recompute profit split",
				zap.String("job_id", jobID.String()),
				zap.Error(err))
		}
	}
}

func (s *LineItemService) logActivity(ctx context.Context, job *domain.Job, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetJob,
		TargetID:   job.ID,
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
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
}
