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

// LifecycleService drives the production status pipeline: single-step
// advances plus the manual override escape hatch.
type LifecycleService struct {
	jobRepo      *repository.JobRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

// NewLifecycleService creates a LifecycleService
func NewLifecycleService(jobRepo *repository.JobRepository, activityRepo *repository.ActivityRepository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{jobRepo: jobRepo, activityRepo: activityRepo, logger: logger}
}

// Advance moves the job one step along the pipeline.
func (s *LifecycleService) Advance(ctx context.Context, jobID uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	from := job.EffectiveStatus()
	next, err := workflow.AdvanceStatus(job)
	if err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Status advanced",
		fmt.Sprintf("Job %s advanced from %s to %s", job.JobNumber, from, next))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// Override sets a manual status override, recording who set it and when.
func (s *LifecycleService) Override(ctx context.Context, jobID uuid.UUID, req *domain.OverrideStatusRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	setBy := ""
	if userCtx, ok := auth.FromContext(ctx); ok {
		setBy = userCtx.DisplayName
	}

	if err := workflow.OverrideStatus(job, req.Status, setBy, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Status overridden",
		fmt.Sprintf("Job %s status manually set to %s", job.JobNumber, req.Status))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// ClearOverride reverts the job to its computed status.
func (s *LifecycleService) ClearOverride(ctx context.Context, jobID uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	hadOverride := job.Override() != nil
	workflow.ClearOverride(job)

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	if hadOverride {
		s.logActivity(ctx, job, "Status override cleared",
			fmt.Sprintf("Job %s reverted to computed status %s", job.JobNumber, job.Status))
	}

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

func (s *LifecycleService) logActivity(ctx context.Context, job *domain.Job, title, body string) {
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
