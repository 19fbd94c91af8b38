package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/repository"
)

// ActivityService exposes the audit trail of job and entity events.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

// NewActivityService creates an ActivityService
func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: logger}
}

// AddNote records a manual note on a target entity.
func (s *ActivityService) AddNote(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) (*domain.ActivityDTO, error) {
	activity := &domain.Activity{
		TargetType: targetType,
		TargetID:   targetID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID
		activity.CreatorName = userCtx.DisplayName
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// ListByTarget returns the activity history for one entity, newest first.
func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}

// ListRecent returns the most recent activity across all targets.
func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
