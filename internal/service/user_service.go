package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

// UserService manages operator accounts. Tokens are issued out of band; this
// service keeps the local user records that roles and activity attribution
// hang off.
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Upsert creates or updates a user record.
func (s *UserService) Upsert(ctx context.Context, user *domain.User) error {
	if user.ID == "" || user.Email == "" {
		return domain.NewValidationError("user", "id and email are required")
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// RecordLogin stamps the user's last login time. Missing users are ignored;
// tokens can outlive a deactivated local record.
func (s *UserService) RecordLogin(ctx context.Context, id string) {
	if err := s.userRepo.TouchLastLogin(ctx, id); err != nil {
		s.logger.Debug("failed to record login", zap.String("user_id", id), zap.Error(err))
	}
}
