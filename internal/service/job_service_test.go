package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

func TestJobServiceCreateClassifiesRouting(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)
	partner := createTestVendor(t, db, "partnerpress", true)
	shop := createTestVendor(t, db, "cityprint", false)

	tests := []struct {
		name         string
		vendorID     string
		directToShop bool
		want         domain.RoutingType
	}{
		{"preferred partner vendor", partner.ID.String(), false, domain.RoutingPartner},
		{"partner wins over direct flag", partner.ID.String(), true, domain.RoutingPartner},
		{"direct to shop", shop.ID.String(), true, domain.RoutingDirect},
		{"outside vendor", shop.ID.String(), false, domain.RoutingThirdParty},
		{"no vendor yet", "", false, domain.RoutingThirdParty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
				Title:        "Spring catalog",
				CustomerID:   customer.ID.String(),
				VendorID:     tt.vendorID,
				DirectToShop: tt.directToShop,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, dto.RoutingType)
		})
	}
}

func TestJobServiceCreateRoutingIsSticky(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)
	vendor := createTestVendor(t, db, "cityprint", false)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Flyer run",
		CustomerID: customer.ID.String(),
		VendorID:   vendor.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoutingThirdParty, dto.RoutingType)

	// Promoting the vendor to partner afterwards must not reclassify the job.
	vendor.IsPreferredPartner = true
	require.NoError(t, repository.NewVendorRepository(db).Update(context.Background(), vendor))

	reloaded, err := svc.Get(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoutingThirdParty, reloaded.RoutingType)
}

func TestJobServiceCreateAssignsSequentialJobNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
			Title:      "Job",
			CustomerID: customer.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("J-%d-%04d", year, i), dto.JobNumber)
	}
}

func TestJobServiceUpdateStaleVersionConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Poster run",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, dto.Version)

	title := "Poster run v2"
	updated, err := svc.Update(context.Background(), dto.ID, &domain.UpdateJobRequest{
		Title:   &title,
		Version: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	// A second writer still holding version 1 loses the race.
	stale := "Poster run v3"
	_, err = svc.Update(context.Background(), dto.ID, &domain.UpdateJobRequest{
		Title:   &stale,
		Version: 1,
	})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	reloaded, err := svc.Get(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poster run v2", reloaded.Title)
}

func TestJobServiceSetIntermediaryCutPartnerRouted(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)
	partner := createTestVendor(t, db, "partnerpress", true)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Brochure",
		CustomerID: customer.ID.String(),
		VendorID:   partner.ID.String(),
	})
	require.NoError(t, err)

	amount := "500"
	_, err = svc.SetIntermediaryCut(context.Background(), dto.ID, &domain.SetIntermediaryCutRequest{Amount: &amount})
	assert.True(t, errors.Is(err, ErrCutNotApplicable))
}

func TestJobServiceProfitSplitFromLineItems(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Mailer",
		CustomerID: customer.ID.String(),
		SellPrice:  "1000",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoutingThirdParty, dto.RoutingType)

	item := &domain.LineItem{
		JobID:       dto.ID,
		Description: "Printing",
		Quantity:    decimal.NewFromInt(100),
		UnitCost:    decimal.NewFromInt(4),
		UnitPrice:   decimal.NewFromInt(10),
	}
	require.NoError(t, repository.NewLineItemRepository(db).Create(context.Background(), item))

	split, err := svc.GetProfitSplit(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfitMethodLineItems, split.Method)
	assert.Equal(t, "400.00", split.TotalCost)
	assert.Equal(t, "1000.00", split.Revenue)
	assert.Equal(t, "600.00", split.Spread)
	assert.Equal(t, "0.00", split.IntermediaryCut)
	assert.Equal(t, "600.00", split.FinalProfit)
}

func TestJobServiceProfitSplitAppliesManualCut(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Mailer",
		CustomerID: customer.ID.String(),
		SellPrice:  "1000",
	})
	require.NoError(t, err)

	item := &domain.LineItem{
		JobID:       dto.ID,
		Description: "Printing",
		Quantity:    decimal.NewFromInt(100),
		UnitCost:    decimal.NewFromInt(4),
		UnitPrice:   decimal.NewFromInt(10),
	}
	require.NoError(t, repository.NewLineItemRepository(db).Create(context.Background(), item))

	amount := "150"
	_, err = svc.SetIntermediaryCut(context.Background(), dto.ID, &domain.SetIntermediaryCutRequest{Amount: &amount})
	require.NoError(t, err)

	split, err := svc.GetProfitSplit(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", split.IntermediaryCut)
	assert.Equal(t, "450.00", split.FinalProfit)
}

func TestJobServiceProfitSplitRefusesUnpricedJob(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Unpriced",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	_, err = svc.GetProfitSplit(context.Background(), dto.ID)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestJobServiceDeleteSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	svc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := svc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Short-lived",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), dto.ID))

	_, err = svc.Get(context.Background(), dto.ID)
	assert.True(t, errors.Is(err, ErrJobNotFound))

	// The row survives deletion for financial history.
	var count int64
	require.NoError(t, db.Unscoped().Model(&domain.Job{}).Where("id = ?", dto.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
