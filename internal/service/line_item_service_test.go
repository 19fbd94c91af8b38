package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

func newLineItemServiceForTest(t *testing.T) (*LineItemService, *JobService, *gorm.DB, *domain.JobDTO) {
	t.Helper()
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	job, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Leaflets",
		CustomerID: customer.ID.String(),
		SellPrice:  "1250",
	})
	require.NoError(t, err)

	svc := NewLineItemService(
		repository.NewLineItemRepository(db),
		repository.NewJobRepository(db),
		repository.NewActivityRepository(db),
		jobSvc,
		zap.NewNop(),
	)
	return svc, jobSvc, db, job
}

func TestLineItemAddDerivesPriceFromMarkup(t *testing.T) {
	svc, _, _, job := newLineItemServiceForTest(t)

	dto, err := svc.Add(context.Background(), job.ID, &domain.LineItemRequest{
		Description:   "Offset printing",
		Quantity:      "100",
		UnitCost:      "10",
		MarkupPercent: "25",
	})
	require.NoError(t, err)
	assert.Equal(t, "10.0000", dto.UnitCost)
	assert.Equal(t, "25.000", dto.MarkupPercent)
	assert.Equal(t, "12.5000", dto.UnitPrice)
}

func TestLineItemEditPriceBackDerivesMarkup(t *testing.T) {
	svc, _, _, job := newLineItemServiceForTest(t)

	dto, err := svc.Add(context.Background(), job.ID, &domain.LineItemRequest{
		Description: "Offset printing",
		Quantity:    "100",
		UnitCost:    "10",
	})
	require.NoError(t, err)

	edited, err := svc.EditField(context.Background(), dto.ID, &domain.LineItemEditRequest{
		Field: "price",
		Value: "15",
	})
	require.NoError(t, err)
	assert.Equal(t, "15.0000", edited.UnitPrice)
	assert.Equal(t, "50.000", edited.MarkupPercent)
	assert.Equal(t, "10.0000", edited.UnitCost)
}

func TestLineItemMarkupRequiresCost(t *testing.T) {
	svc, _, _, job := newLineItemServiceForTest(t)

	_, err := svc.Add(context.Background(), job.ID, &domain.LineItemRequest{
		Description:   "Unknown cost",
		Quantity:      "10",
		MarkupPercent: "20",
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLineItemMutationsRecomputeSplit(t *testing.T) {
	svc, jobSvc, _, job := newLineItemServiceForTest(t)

	dto, err := svc.Add(context.Background(), job.ID, &domain.LineItemRequest{
		Description: "Printing",
		Quantity:    "100",
		UnitCost:    "5",
		UnitPrice:   "12.50",
	})
	require.NoError(t, err)

	split, err := jobSvc.GetProfitSplit(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", split.TotalCost)
	assert.Equal(t, "1250.00", split.Revenue)
	assert.Equal(t, "750.00", split.FinalProfit)

	_, err = svc.EditField(context.Background(), dto.ID, &domain.LineItemEditRequest{
		Field: "cost",
		Value: "7.50",
	})
	require.NoError(t, err)

	split, err = jobSvc.GetProfitSplit(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "750.00", split.TotalCost)
	assert.Equal(t, "500.00", split.FinalProfit)

	require.NoError(t, svc.Delete(context.Background(), dto.ID))

	items, err := svc.List(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
