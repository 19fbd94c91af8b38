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
	"github.com/pressgate/broker-api/internal/invoice"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/workflow"
)

// PaymentService records and reverses payment milestones. Recording the
// intermediary-paid milestone also dispatches the downstream invoice to the
// final vendor; a failed dispatch is a warning on the response, never a
// rollback of the milestone.
type PaymentService struct {
	jobRepo      *repository.JobRepository
	activityRepo *repository.ActivityRepository
	dispatcher   invoice.Dispatcher
	logger       *zap.Logger
}

// NewPaymentService creates a PaymentService
func NewPaymentService(jobRepo *repository.JobRepository, activityRepo *repository.ActivityRepository, dispatcher invoice.Dispatcher, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		jobRepo:      jobRepo,
		activityRepo: activityRepo,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// RecordMilestone records a payment milestone on a job.
func (s *PaymentService) RecordMilestone(ctx context.Context, jobID uuid.UUID, req *domain.RecordMilestoneRequest) (*domain.MilestoneUpdateResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	rec := workflow.MilestoneRecord{Note: req.Note}
	if req.At != nil {
		rec.At = *req.At
	}
	if req.Amount != nil {
		amount, err := domain.ParseDecimal(*req.Amount)
		if err != nil {
			return nil, domain.NewValidationError("amount", "must be a decimal number")
		}
		rec.Amount = &amount
	}

	invoiceDue, err := workflow.ApplyMilestone(job, req.Milestone, rec)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if invoiceDue {
		receipt, derr := s.dispatcher.SendDownstreamInvoice(ctx, job)
		if derr != nil {
			// The milestone stands; dispatch retries on the next recording or
			// via the explicit resend endpoint.
			s.logger.Warn("downstream invoice dispatch failed",
				zap.String("job_id", job.ID.String()),
				zap.String("job_number", job.JobNumber),
				zap.Error(derr))
			warnings = append(warnings, "downstream invoice dispatch failed: "+derr.Error())
		} else {
			workflow.MarkDownstreamInvoiceSent(job, receipt.SentTo, receipt.SentAt)
		}
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Payment milestone recorded",
		fmt.Sprintf("Milestone %s recorded on job %s", req.Milestone, job.JobNumber))

	dto := mapper.ToJobDTO(job)
	return &domain.MilestoneUpdateResponse{Job: &dto, Warnings: warnings}, nil
}

// UnsetMilestone reverses a recorded milestone when no later milestone
// depends on it.
func (s *PaymentService) UnsetMilestone(ctx context.Context, jobID uuid.UUID, req *domain.UnsetMilestoneRequest) (*domain.MilestoneUpdateResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := workflow.UnsetMilestone(job, req.Milestone); err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Payment milestone reversed",
		fmt.Sprintf("Milestone %s unset on job %s", req.Milestone, job.JobNumber))

	dto := mapper.ToJobDTO(job)
	return &domain.MilestoneUpdateResponse{Job: &dto}, nil
}

// ResendDownstreamInvoice re-dispatches the downstream invoice for a job
// whose intermediary payment is recorded. Unlike milestone recording this is
// an explicit operator action, so it re-sends even after a prior success.
func (s *PaymentService) ResendDownstreamInvoice(ctx context.Context, jobID uuid.UUID) (*domain.MilestoneUpdateResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.PartnerPaidAt == nil {
		return nil, domain.NewPreconditionError("resend downstream invoice",
			"intermediary payment has not been recorded")
	}

	receipt, err := s.dispatcher.SendDownstreamInvoice(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("downstream invoice dispatch failed: %w", err)
	}
	workflow.MarkDownstreamInvoiceSent(job, receipt.SentTo, receipt.SentAt)

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		return nil, err
	}

	job, err = s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	s.logActivity(ctx, job, "Downstream invoice sent",
		fmt.Sprintf("Downstream invoice for job %s sent to %s", job.JobNumber, receipt.SentTo))

	dto := mapper.ToJobDTO(job)
	return &domain.MilestoneUpdateResponse{Job: &dto}, nil
}

func (s *PaymentService) logActivity(ctx context.Context, job *domain.Job, title, body string) {
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
