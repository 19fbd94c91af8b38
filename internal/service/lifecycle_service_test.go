package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

func newLifecycleServiceForTest(t *testing.T) (*LifecycleService, *domain.JobDTO) {
	t.Helper()
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	job, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Calendar",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	svc := NewLifecycleService(
		repository.NewJobRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
	return svc, job
}

func TestLifecycleAdvanceOneStep(t *testing.T) {
	svc, job := newLifecycleServiceForTest(t)

	dto, err := svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusAwaitingProof, dto.Status)

	dto, err = svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProofReceived, dto.Status)
}

func TestLifecycleAdvanceIntoPaidRequiresCustomerPayment(t *testing.T) {
	svc, job := newLifecycleServiceForTest(t)

	// Park the job just before paid via an override, then try to advance.
	_, err := svc.Override(context.Background(), job.ID, &domain.OverrideStatusRequest{
		Status: domain.JobStatusInvoiced,
	})
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), job.ID)
	var precondition *domain.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestLifecycleOverrideAndClear(t *testing.T) {
	svc, job := newLifecycleServiceForTest(t)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "u-17",
		DisplayName: "Mari Berg",
	})

	dto, err := svc.Override(ctx, job.ID, &domain.OverrideStatusRequest{
		Status: domain.JobStatusInProduction,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProduction, dto.EffectiveStatus)
	assert.Equal(t, domain.JobStatusNew, dto.Status)
	require.NotNil(t, dto.Override)
	assert.Equal(t, "Mari Berg", dto.Override.SetBy)

	dto, err = svc.ClearOverride(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, dto.Override)
	assert.Equal(t, domain.JobStatusNew, dto.EffectiveStatus)
}

func TestLifecycleAdvanceClearsOverride(t *testing.T) {
	svc, job := newLifecycleServiceForTest(t)

	_, err := svc.Override(context.Background(), job.ID, &domain.OverrideStatusRequest{
		Status: domain.JobStatusApproved,
	})
	require.NoError(t, err)

	// Advancing picks up from the override and clears it.
	dto, err := svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProduction, dto.Status)
	assert.Nil(t, dto.Override)
}
