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
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/workflow"
)

// PurchaseOrderService manages purchase orders between the parties on a job.
// Sending a PO to the vendor is gated on the job's readiness rollup.
type PurchaseOrderService struct {
	poRepo        *repository.PurchaseOrderRepository
	jobRepo       *repository.JobRepository
	componentRepo *repository.JobComponentRepository
	vendorRepo    *repository.VendorRepository
	activityRepo  *repository.ActivityRepository
	jobService    *JobService
	logger        *zap.Logger
}

// NewPurchaseOrderService creates a PurchaseOrderService
func NewPurchaseOrderService(
	poRepo *repository.PurchaseOrderRepository,
	jobRepo *repository.JobRepository,
	componentRepo *repository.JobComponentRepository,
	vendorRepo *repository.VendorRepository,
	activityRepo *repository.ActivityRepository,
	jobService *JobService,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		poRepo:        poRepo,
		jobRepo:       jobRepo,
		componentRepo: componentRepo,
		vendorRepo:    vendorRepo,
		activityRepo:  activityRepo,
		jobService:    jobService,
		logger:        logger,
	}
}

// Create creates a purchase order on a job and recomputes the split.
func (s *PurchaseOrderService) Create(ctx context.Context, jobID uuid.UUID, req *domain.PurchaseOrderRequest) (*domain.PurchaseOrderDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	po := &domain.PurchaseOrder{JobID: jobID}
	if err := s.applyFields(ctx, po, req); err != nil {
		return nil, err
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.recompute(ctx, jobID)
	s.logActivity(ctx, job, "Purchase order created",
		fmt.Sprintf("Purchase order %s to %s created on job %s", po.OriginParty, po.TargetParty, job.JobNumber))

	po, err = s.poRepo.GetByID(ctx, po.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase order: %w", err)
	}
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

// Update updates a purchase order's parties and costs.
func (s *PurchaseOrderService) Update(ctx context.Context, poID uuid.UUID, req *domain.PurchaseOrderRequest) (*domain.PurchaseOrderDTO, error) {
	po, err := s.poRepo.GetByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	if err := s.applyFields(ctx, po, req); err != nil {
		return nil, err
	}

	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}

	s.recompute(ctx, po.JobID)

	po, err = s.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase order: %w", err)
	}
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

// Delete removes a purchase order and recomputes the job's split.
func (s *PurchaseOrderService) Delete(ctx context.Context, poID uuid.UUID) error {
	po, err := s.poRepo.GetByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseOrderNotFound
		}
		return fmt.Errorf("failed to get purchase order: %w", err)
	}

	if err := s.poRepo.Delete(ctx, poID); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}

	s.recompute(ctx, po.JobID)
	return nil
}

// List returns a job's purchase orders.
func (s *PurchaseOrderService) List(ctx context.Context, jobID uuid.UUID) ([]domain.PurchaseOrderDTO, error) {
	pos, err := s.poRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	dtos := make([]domain.PurchaseOrderDTO, len(pos))
	for i := range pos {
		dtos[i] = mapper.ToPurchaseOrderDTO(&pos[i])
	}
	return dtos, nil
}

// Send marks a purchase order as sent to the vendor. The job's readiness gate
// must be complete; the gate stamp and the PO's own SentAt are set together.
func (s *PurchaseOrderService) Send(ctx context.Context, jobID, poID uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	po, err := s.poRepo.GetByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	if po.JobID != jobID {
		return nil, ErrPurchaseOrderNotFound
	}

	components, err := s.componentRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	now := time.Now().UTC()
	if err := workflow.MarkPOSent(job, components, now); err != nil {
		return nil, err
	}
	po.SentAt = &now

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}

	s.logActivity(ctx, job, "Purchase order sent",
		fmt.Sprintf("Purchase order sent to vendor on job %s", job.JobNumber))

	po, err = s.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase order: %w", err)
	}
	dto := mapper.ToPurchaseOrderDTO(po)
	return &dto, nil
}

func (s *PurchaseOrderService) applyFields(ctx context.Context, po *domain.PurchaseOrder, req *domain.PurchaseOrderRequest) error {
	if !req.OriginParty.IsValid() {
		return domain.NewValidationError("originParty", "must be broker, partner or vendor")
	}
	if !req.TargetParty.IsValid() {
		return domain.NewValidationError("targetParty", "must be broker, partner or vendor")
	}
	if req.OriginParty == req.TargetParty {
		return domain.NewValidationError("targetParty", "must differ from originParty")
	}
	po.OriginParty = req.OriginParty
	po.TargetParty = req.TargetParty

	if req.VendorID != nil {
		vendorID, err := uuid.Parse(*req.VendorID)
		if err != nil {
			return domain.NewValidationError("vendorId", "must be a valid UUID")
		}
		if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVendorNotFound
			}
			return fmt.Errorf("failed to get vendor: %w", err)
		}
		po.VendorID = &vendorID
	}

	buyCost, err := domain.ParseDecimal(req.BuyCost)
	if err != nil {
		return domain.NewValidationError("buyCost", "must be a decimal number")
	}
	if buyCost.Sign() < 0 {
		return domain.NewValidationError("buyCost", "must not be negative")
	}
	po.BuyCost = buyCost

	parseOptional := func(field string, raw *string) (*decimal.Decimal, error) {
		if raw == nil {
			return nil, nil
		}
		value, err := domain.ParseDecimal(*raw)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be a decimal number")
		}
		return &value, nil
	}

	if po.PaperCPM, err = parseOptional("paperCpm", req.PaperCPM); err != nil {
		return err
	}
	if po.PrintCPM, err = parseOptional("printCpm", req.PrintCPM); err != nil {
		return err
	}
	if po.PaperCost, err = parseOptional("paperCost", req.PaperCost); err != nil {
		return err
	}
	if po.PaperMarkup, err = parseOptional("paperMarkup", req.PaperMarkup); err != nil {
		return err
	}
	if po.ManufacturingCost, err = parseOptional("manufacturingCost", req.ManufacturingCost); err != nil {
		return err
	}

	po.Notes = req.Notes
	return nil
}

func (s *PurchaseOrderService) recompute(ctx context.Context, jobID uuid.UUID) {
	if _, err := s.jobService.RecomputeProfit(ctx, jobID); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Warn("failed to recompute profit split",
				zap.String("job_id", jobID.String()),
				zap.Error(err))
		}
	}
}

func (s *PurchaseOrderService) logActivity(ctx context.Context, job *domain.Job, title, body string) {
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
