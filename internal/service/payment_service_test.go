package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/invoice"
	"github.com/pressgate/broker-api/internal/repository"
)

// stubDispatcher records calls and fails on demand.
type stubDispatcher struct {
	fail  bool
	calls int
}

func (d *stubDispatcher) SendDownstreamInvoice(ctx context.Context, job *domain.Job) (invoice.Receipt, error) {
	d.calls++
	if d.fail {
		return invoice.Receipt{}, errors.New("smtp connection refused")
	}
	return invoice.Receipt{SentTo: "vendor@print.example", SentAt: time.Now().UTC()}, nil
}

func newPaymentServiceForTest(t *testing.T) (*PaymentService, *JobService, *stubDispatcher, *domain.JobDTO) {
	t.Helper()
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Catalog",
		CustomerID: customer.ID.String(),
		SellPrice:  "2500",
	})
	require.NoError(t, err)

	dispatcher := &stubDispatcher{}
	svc := NewPaymentService(
		repository.NewJobRepository(db),
		repository.NewActivityRepository(db),
		dispatcher,
		zap.NewNop(),
	)
	return svc, jobSvc, dispatcher, dto
}

func TestRecordMilestoneOutOfOrderRefused(t *testing.T) {
	svc, _, _, job := newPaymentServiceForTest(t)

	_, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneIntermediaryPaid,
	})
	var precondition *domain.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestRecordCustomerPaidWithoutInvoiceMilestone(t *testing.T) {
	svc, _, _, job := newPaymentServiceForTest(t)

	// Manual payment tracking: the customer's payment can be recorded before
	// anyone records the invoice milestone.
	resp, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneCustomerPaid,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Job.Payments.CustomerPaid.At)
	assert.Nil(t, resp.Job.Payments.InvoiceSent.At)
}

func TestRecordMilestonesInOrder(t *testing.T) {
	svc, _, dispatcher, job := newPaymentServiceForTest(t)

	amount := "2500"
	resp, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneInvoiceSent,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Job.Payments.InvoiceSent.At)

	resp, err = svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneCustomerPaid,
		Amount:    &amount,
		Note:      "bank ref 4417",
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Job.Payments.CustomerPaid.At)
	require.NotNil(t, resp.Job.Payments.CustomerPaid.Amount)
	assert.Equal(t, "2500.00", *resp.Job.Payments.CustomerPaid.Amount)
	assert.Equal(t, "bank ref 4417", resp.Job.Payments.CustomerPaid.Note)

	// Intermediary payment triggers the downstream invoice.
	resp, err = svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneIntermediaryPaid,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, 1, dispatcher.calls)
	assert.NotNil(t, resp.Job.Payments.DownstreamInvoice.At)

	resp, err = svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneFinalVendorPaid,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Job.Payments.FinalVendorPaid.At)
}

func TestIntermediaryPaidStandsWhenDispatchFails(t *testing.T) {
	svc, _, dispatcher, job := newPaymentServiceForTest(t)
	dispatcher.fail = true

	for _, m := range []domain.PaymentMilestone{domain.MilestoneInvoiceSent, domain.MilestoneCustomerPaid} {
		_, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{Milestone: m})
		require.NoError(t, err)
	}

	resp, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneIntermediaryPaid,
	})
	require.NoError(t, err)

	// The milestone sticks, the failure is only a warning.
	assert.NotNil(t, resp.Job.Payments.IntermediaryPaid.At)
	assert.Nil(t, resp.Job.Payments.DownstreamInvoice.At)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "dispatch failed")

	// Explicit resend succeeds once the dispatcher recovers.
	dispatcher.fail = false
	resp, err = svc.ResendDownstreamInvoice(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotNil(t, resp.Job.Payments.DownstreamInvoice.At)
}

func TestResendDownstreamInvoiceRequiresIntermediaryPaid(t *testing.T) {
	svc, _, _, job := newPaymentServiceForTest(t)

	_, err := svc.ResendDownstreamInvoice(context.Background(), job.ID)
	var precondition *domain.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestUnsetMilestoneBlockedByDependentMilestone(t *testing.T) {
	svc, _, _, job := newPaymentServiceForTest(t)

	milestones := []domain.PaymentMilestone{
		domain.MilestoneInvoiceSent,
		domain.MilestoneCustomerPaid,
		domain.MilestoneIntermediaryPaid,
	}
	for _, m := range milestones {
		_, err := svc.RecordMilestone(context.Background(), job.ID, &domain.RecordMilestoneRequest{Milestone: m})
		require.NoError(t, err)
	}

	_, err := svc.UnsetMilestone(context.Background(), job.ID, &domain.UnsetMilestoneRequest{
		Milestone: domain.MilestoneCustomerPaid,
	})
	var dependency *domain.DependencyError
	assert.ErrorAs(t, err, &dependency)

	// Nothing depends on the invoice milestone, so it unsets even with the
	// payments recorded.
	resp, err := svc.UnsetMilestone(context.Background(), job.ID, &domain.UnsetMilestoneRequest{
		Milestone: domain.MilestoneInvoiceSent,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Job.Payments.InvoiceSent.At)
	assert.NotNil(t, resp.Job.Payments.CustomerPaid.At)

	// The latest milestone unsets cleanly.
	resp, err = svc.UnsetMilestone(context.Background(), job.ID, &domain.UnsetMilestoneRequest{
		Milestone: domain.MilestoneIntermediaryPaid,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Job.Payments.IntermediaryPaid.At)
}

func TestStaleJobWriteConflicts(t *testing.T) {
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	dto, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Catalog",
		CustomerID: customer.ID.String(),
		SellPrice:  "2500",
	})
	require.NoError(t, err)

	jobRepo := repository.NewJobRepository(db)
	svc := NewPaymentService(jobRepo, repository.NewActivityRepository(db), &stubDispatcher{}, zap.NewNop())

	// A second operator loads the job before the milestone is recorded.
	stale, err := jobRepo.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)

	_, err = svc.RecordMilestone(context.Background(), dto.ID, &domain.RecordMilestoneRequest{
		Milestone: domain.MilestoneCustomerPaid,
	})
	require.NoError(t, err)

	// The stale full-row write loses with a conflict instead of erasing the
	// freshly recorded milestone.
	stale.Title = "Catalog reprint"
	err = jobRepo.UpdateWithVersion(context.Background(), stale, stale.Version)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	fresh, err := jobRepo.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.NotNil(t, fresh.CustomerPaidAt)
}
