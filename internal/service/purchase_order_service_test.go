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

func newPurchaseOrderServiceForTest(t *testing.T) (*PurchaseOrderService, *ReadinessService, *gorm.DB, *domain.JobDTO) {
	t.Helper()
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)
	vendor := createTestVendor(t, db, "cityprint", false)

	job, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Booklet",
		CustomerID: customer.ID.String(),
		VendorID:   vendor.ID.String(),
		SellPrice:  "4000",
	})
	require.NoError(t, err)

	poSvc := NewPurchaseOrderService(
		repository.NewPurchaseOrderRepository(db),
		repository.NewJobRepository(db),
		repository.NewJobComponentRepository(db),
		repository.NewVendorRepository(db),
		repository.NewActivityRepository(db),
		jobSvc,
		zap.NewNop(),
	)
	readinessSvc := NewReadinessService(
		repository.NewJobRepository(db),
		repository.NewJobComponentRepository(db),
		repository.NewVendorRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
	return poSvc, readinessSvc, db, job
}

func satisfyReadiness(t *testing.T, svc *ReadinessService, job *domain.JobDTO) {
	t.Helper()
	received := domain.ReadinessReceived
	na := domain.ReadinessNotApplicable
	_, err := svc.UpdateFlags(context.Background(), job.ID, &domain.UpdateReadinessRequest{
		Artwork:     &received,
		DataFiles:   &received,
		MailingInfo: &na,
		Materials:   &na,
		Versions:    &na,
	})
	require.NoError(t, err)
}

func TestPurchaseOrderRejectsSameParties(t *testing.T) {
	poSvc, _, _, job := newPurchaseOrderServiceForTest(t)

	_, err := poSvc.Create(context.Background(), job.ID, &domain.PurchaseOrderRequest{
		OriginParty: domain.PartyBroker,
		TargetParty: domain.PartyBroker,
		BuyCost:     "100",
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPurchaseOrderSendBlockedWhileIncomplete(t *testing.T) {
	poSvc, readinessSvc, _, job := newPurchaseOrderServiceForTest(t)

	po, err := poSvc.Create(context.Background(), job.ID, &domain.PurchaseOrderRequest{
		OriginParty: domain.PartyBroker,
		TargetParty: domain.PartyVendor,
		BuyCost:     "2200",
	})
	require.NoError(t, err)

	// All five job flags default to pending.
	result, err := readinessSvc.Evaluate(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReadinessStatusIncomplete, result.Status)
	assert.Len(t, result.Blockers, 5)

	_, err = poSvc.Send(context.Background(), job.ID, po.ID)
	var precondition *domain.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestPurchaseOrderSendIsOneWay(t *testing.T) {
	poSvc, readinessSvc, _, job := newPurchaseOrderServiceForTest(t)

	po, err := poSvc.Create(context.Background(), job.ID, &domain.PurchaseOrderRequest{
		OriginParty: domain.PartyBroker,
		TargetParty: domain.PartyVendor,
		BuyCost:     "2200",
	})
	require.NoError(t, err)

	satisfyReadiness(t, readinessSvc, job)

	sent, err := poSvc.Send(context.Background(), job.ID, po.ID)
	require.NoError(t, err)
	assert.NotNil(t, sent.SentAt)

	result, err := readinessSvc.Evaluate(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessStatusSent, result.Status)

	// Flipping a flag back after sending demotes it to a warning, never a
	// retroactive blocker.
	pending := domain.ReadinessPending
	_, err = readinessSvc.UpdateFlags(context.Background(), job.ID, &domain.UpdateReadinessRequest{
		Artwork: &pending,
	})
	require.NoError(t, err)

	result, err = readinessSvc.Evaluate(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessStatusSent, result.Status)
	assert.Empty(t, result.Blockers)
	assert.NotEmpty(t, result.Warnings)

	// A second send is refused.
	_, err = poSvc.Send(context.Background(), job.ID, po.ID)
	var precondition *domain.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestPurchaseOrderSendGateIncludesComponents(t *testing.T) {
	poSvc, readinessSvc, db, job := newPurchaseOrderServiceForTest(t)

	po, err := poSvc.Create(context.Background(), job.ID, &domain.PurchaseOrderRequest{
		OriginParty: domain.PartyBroker,
		TargetParty: domain.PartyVendor,
		BuyCost:     "2200",
	})
	require.NoError(t, err)

	supplier := createTestVendor(t, db, "envelopeworks", false)
	supplierID := supplier.ID.String()
	component, err := readinessSvc.AddComponent(context.Background(), job.ID, &domain.JobComponentRequest{
		Name:       "Envelope",
		SupplierID: &supplierID,
	})
	require.NoError(t, err)

	satisfyReadiness(t, readinessSvc, job)

	// The component's pending flags still block the gate.
	_, err = poSvc.Send(context.Background(), job.ID, po.ID)
	var precondition *domain.PreconditionError
	require.ErrorAs(t, err, &precondition)

	received := domain.ReadinessReceived
	_, err = readinessSvc.UpdateComponent(context.Background(), component.ID, &domain.JobComponentRequest{
		Name:           "Envelope",
		SupplierID:     &supplierID,
		ArtworkStatus:  &received,
		MaterialStatus: &received,
	})
	require.NoError(t, err)

	_, err = poSvc.Send(context.Background(), job.ID, po.ID)
	assert.NoError(t, err)
}
