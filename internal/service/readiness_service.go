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
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/workflow"
)

// ReadinessService manages the vendor PO gate: the job-level readiness flags,
// the per-component flags that roll up into it, and gate evaluation.
type ReadinessService struct {
	jobRepo       *repository.JobRepository
	componentRepo *repository.JobComponentRepository
	vendorRepo    *repository.VendorRepository
	activityRepo  *repository.ActivityRepository
	logger        *zap.Logger
}

// NewReadinessService creates a ReadinessService
func NewReadinessService(
	jobRepo *repository.JobRepository,
	componentRepo *repository.JobComponentRepository,
	vendorRepo *repository.VendorRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *ReadinessService {
	return &ReadinessService{
		jobRepo:       jobRepo,
		componentRepo: componentRepo,
		vendorRepo:    vendorRepo,
		activityRepo:  activityRepo,
		logger:        logger,
	}
}

// Evaluate rolls up the readiness gate for a job.
func (s *ReadinessService) Evaluate(ctx context.Context, jobID uuid.UUID) (*domain.ReadinessResultDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	components, err := s.componentRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	result := workflow.EvaluateReadiness(job, components)
	return &domain.ReadinessResultDTO{
		Status:   result.Status,
		Blockers: result.Blockers,
		Warnings: result.Warnings,
	}, nil
}

// UpdateFlags updates the job-level readiness flags. Nil request fields are
// left untouched; flags stay editable after PO send for record keeping.
func (s *ReadinessService) UpdateFlags(ctx context.Context, jobID uuid.UUID, req *domain.UpdateReadinessRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	apply := func(field string, target *domain.ReadinessState, value *domain.ReadinessState) error {
		if value == nil {
			return nil
		}
		if !value.IsValid() {
			return domain.NewValidationError(field, "must be received, pending or not_applicable")
		}
		*target = *value
		return nil
	}

	if err := apply("artwork", &job.ArtworkStatus, req.Artwork); err != nil {
		return nil, err
	}
	if err := apply("dataFiles", &job.DataFilesStatus, req.DataFiles); err != nil {
		return nil, err
	}
	if err := apply("mailingInfo", &job.MailingInfoStatus, req.MailingInfo); err != nil {
		return nil, err
	}
	if err := apply("materials", &job.MaterialsStatus, req.Materials); err != nil {
		return nil, err
	}
	if err := apply("versions", &job.VersionsStatus, req.Versions); err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Readiness flags updated",
		fmt.Sprintf("Readiness flags updated on job %s", job.JobNumber))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// AddComponent adds a component whose flags roll up into the job's gate.
func (s *ReadinessService) AddComponent(ctx context.Context, jobID uuid.UUID, req *domain.JobComponentRequest) (*domain.JobComponentDTO, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	component := &domain.JobComponent{
		JobID:          jobID,
		Name:           req.Name,
		ArtworkStatus:  domain.ReadinessPending,
		MaterialStatus: domain.ReadinessPending,
	}
	if err := s.applyComponentFields(ctx, component, req); err != nil {
		return nil, err
	}

	if err := s.componentRepo.Create(ctx, component); err != nil {
		return nil, fmt.Errorf("failed to create component: %w", err)
	}

	component, err := s.componentRepo.GetByID(ctx, component.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload component: %w", err)
	}

	dto := mapper.ToJobComponentDTO(component)
	return &dto, nil
}

// UpdateComponent updates a component's flags and tracking details.
func (s *ReadinessService) UpdateComponent(ctx context.Context, componentID uuid.UUID, req *domain.JobComponentRequest) (*domain.JobComponentDTO, error) {
	component, err := s.componentRepo.GetByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	if req.Name != "" {
		component.Name = req.Name
	}
	if err := s.applyComponentFields(ctx, component, req); err != nil {
		return nil, err
	}

	if err := s.componentRepo.Update(ctx, component); err != nil {
		return nil, fmt.Errorf("failed to update component: %w", err)
	}

	component, err = s.componentRepo.GetByID(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload component: %w", err)
	}

	dto := mapper.ToJobComponentDTO(component)
	return &dto, nil
}

// DeleteComponent removes a component from the job's gate.
func (s *ReadinessService) DeleteComponent(ctx context.Context, componentID uuid.UUID) error {
	if _, err := s.componentRepo.GetByID(ctx, componentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrComponentNotFound
		}
		return fmt.Errorf("failed to get component: %w", err)
	}
	return s.componentRepo.Delete(ctx, componentID)
}

// ListComponents lists a job's components.
func (s *ReadinessService) ListComponents(ctx context.Context, jobID uuid.UUID) ([]domain.JobComponentDTO, error) {
	components, err := s.componentRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	dtos := make([]domain.JobComponentDTO, len(components))
	for i := range components {
		dtos[i] = mapper.ToJobComponentDTO(&components[i])
	}
	return dtos, nil
}

func (s *ReadinessService) applyComponentFields(ctx context.Context, component *domain.JobComponent, req *domain.JobComponentRequest) error {
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return domain.NewValidationError("supplierId", "must be a valid UUID")
		}
		if _, err := s.vendorRepo.GetByID(ctx, supplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVendorNotFound
			}
			return fmt.Errorf("failed to get supplier: %w", err)
		}
		component.SupplierID = &supplierID
	}
	if req.ArtworkStatus != nil {
		if !req.ArtworkStatus.IsValid() {
			return domain.NewValidationError("artworkStatus", "must be received, pending or not_applicable")
		}
		component.ArtworkStatus = *req.ArtworkStatus
	}
	if req.MaterialStatus != nil {
		if !req.MaterialStatus.IsValid() {
			return domain.NewValidationError("materialStatus", "must be received, pending or not_applicable")
		}
		component.MaterialStatus = *req.MaterialStatus
	}
	if req.TrackingNumber != nil {
		component.TrackingNumber = *req.TrackingNumber
	}
	if req.Notes != nil {
		component.Notes = *req.Notes
	}
	return nil
}

func (s *ReadinessService) logActivity(ctx context.Context, job *domain.Job, title, body string) {
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
