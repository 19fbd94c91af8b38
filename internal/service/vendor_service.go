package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/repository"
)

// VendorService manages print vendors and partner shops.
type VendorService struct {
	vendorRepo *repository.VendorRepository
	logger     *zap.Logger
}

// NewVendorService creates a VendorService
func NewVendorService(vendorRepo *repository.VendorRepository, logger *zap.Logger) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, logger: logger}
}

// Create creates a vendor.
func (s *VendorService) Create(ctx context.Context, req *domain.VendorRequest) (*domain.VendorDTO, error) {
	vendor := &domain.Vendor{IsActive: true}
	applyVendorFields(vendor, req)

	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}

	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

// Get returns a vendor by id.
func (s *VendorService) Get(ctx context.Context, id uuid.UUID) (*domain.VendorDTO, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

// Update updates a vendor. Flipping the partner flag affects how FUTURE jobs
// are routed; existing jobs keep their stored routing.
func (s *VendorService) Update(ctx context.Context, id uuid.UUID, req *domain.VendorRequest) (*domain.VendorDTO, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	applyVendorFields(vendor, req)

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}

	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

// Deactivate soft-disables a vendor so it no longer appears in pickers.
func (s *VendorService) Deactivate(ctx context.Context, id uuid.UUID) error {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVendorNotFound
		}
		return fmt.Errorf("failed to get vendor: %w", err)
	}

	vendor.IsActive = false
	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	return nil
}

// List returns a page of vendors, optionally only active ones.
func (s *VendorService) List(ctx context.Context, page, pageSize int, activeOnly bool) (*domain.PaginatedResponse, error) {
	vendors, total, err := s.vendorRepo.List(ctx, page, pageSize, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	dtos := make([]domain.VendorDTO, len(vendors))
	for i := range vendors {
		dtos[i] = mapper.ToVendorDTO(&vendors[i])
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

// Search returns vendors matching a free-text query on name.
func (s *VendorService) Search(ctx context.Context, query string, limit int) ([]domain.VendorDTO, error) {
	vendors, err := s.vendorRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vendors: %w", err)
	}
	dtos := make([]domain.VendorDTO, len(vendors))
	for i := range vendors {
		dtos[i] = mapper.ToVendorDTO(&vendors[i])
	}
	return dtos, nil
}

func applyVendorFields(vendor *domain.Vendor, req *domain.VendorRequest) {
	vendor.Name = req.Name
	vendor.Email = req.Email
	vendor.Phone = req.Phone
	vendor.Address = req.Address
	vendor.City = req.City
	vendor.PostalCode = req.PostalCode
	vendor.IsPreferredPartner = req.IsPreferredPartner
	vendor.Notes = req.Notes
}
