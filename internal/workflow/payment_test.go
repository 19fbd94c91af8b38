package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
)

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func applyChain(t *testing.T, job *domain.Job, upTo domain.PaymentMilestone) {
	t.Helper()
	for _, m := range MilestoneOrder() {
		_, err := ApplyMilestone(job, m, MilestoneRecord{})
		require.NoError(t, err)
		if m == upTo {
			return
		}
	}
}

func TestApplyMilestoneInOrder(t *testing.T) {
	job := &domain.Job{}
	for _, m := range MilestoneOrder() {
		_, err := ApplyMilestone(job, m, MilestoneRecord{})
		require.NoError(t, err, "milestone %s", m)
		assert.NotNil(t, job.MilestoneAt(m))
	}
}

func TestApplyMilestoneOutOfOrderFails(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(j *domain.Job)
		attempt domain.PaymentMilestone
	}{
		{"intermediary paid before customer", func(j *domain.Job) {
			applyChain(t, j, domain.MilestoneInvoiceSent)
		}, domain.MilestoneIntermediaryPaid},
		{"vendor paid before intermediary", func(j *domain.Job) {
			applyChain(t, j, domain.MilestoneCustomerPaid)
		}, domain.MilestoneFinalVendorPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &domain.Job{}
			tt.prepare(job)
			_, err := ApplyMilestone(job, tt.attempt, MilestoneRecord{})
			var perr *domain.PreconditionError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestCustomerPaidIndependentOfInvoiceMilestone(t *testing.T) {
	// Payments are tracked manually; a customer can pay before anyone
	// remembers to record the invoice milestone.
	job := &domain.Job{}
	_, err := ApplyMilestone(job, domain.MilestoneCustomerPaid, MilestoneRecord{
		Amount: decPtr("900.00"),
	})
	require.NoError(t, err)
	assert.NotNil(t, job.CustomerPaidAt)
	assert.Nil(t, job.InvoiceSentAt)
}

func TestApplyMilestoneRecordsAmountAndNote(t *testing.T) {
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneInvoiceSent)

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	_, err := ApplyMilestone(job, domain.MilestoneCustomerPaid, MilestoneRecord{
		At:     at,
		Amount: decPtr("900.00"),
		Note:   "wire ref 4471",
	})
	require.NoError(t, err)
	require.NotNil(t, job.CustomerPaidAt)
	assert.Equal(t, at, *job.CustomerPaidAt)
	assert.True(t, decPtr("900.00").Equal(*job.CustomerPaidAmount))
	assert.Equal(t, "wire ref 4471", job.CustomerPaidNote)
}

func TestApplyMilestoneReRecordUpdatesInPlace(t *testing.T) {
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneCustomerPaid)

	_, err := ApplyMilestone(job, domain.MilestoneCustomerPaid, MilestoneRecord{Amount: decPtr("905.00")})
	require.NoError(t, err)
	assert.True(t, decPtr("905.00").Equal(*job.CustomerPaidAmount))
}

func TestIntermediaryPaidSignalsInvoiceDispatch(t *testing.T) {
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneCustomerPaid)

	due, err := ApplyMilestone(job, domain.MilestoneIntermediaryPaid, MilestoneRecord{})
	require.NoError(t, err)
	assert.True(t, due, "first intermediary-paid recording must request dispatch")

	MarkDownstreamInvoiceSent(job, "accounts@printpartner.example", time.Now())
	require.NotNil(t, job.DownstreamInvoiceSentAt)

	// Re-recording after a successful dispatch must not re-dispatch.
	due, err = ApplyMilestone(job, domain.MilestoneIntermediaryPaid, MilestoneRecord{Note: "corrected"})
	require.NoError(t, err)
	assert.False(t, due)
}

func TestIntermediaryPaidRetriesDispatchUntilMarked(t *testing.T) {
	// If dispatch failed the first time, the sent marker stays clear and the
	// next recording requests dispatch again.
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneCustomerPaid)

	due, err := ApplyMilestone(job, domain.MilestoneIntermediaryPaid, MilestoneRecord{})
	require.NoError(t, err)
	require.True(t, due)

	due, err = ApplyMilestone(job, domain.MilestoneIntermediaryPaid, MilestoneRecord{})
	require.NoError(t, err)
	assert.True(t, due)
}

func TestUnsetMilestoneBlockedByLaterMilestone(t *testing.T) {
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneIntermediaryPaid)

	err := UnsetMilestone(job, domain.MilestoneCustomerPaid)
	var derr *domain.DependencyError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, string(domain.MilestoneIntermediaryPaid), derr.DependsOn)
	assert.NotNil(t, job.CustomerPaidAt, "blocked unset must not clear anything")
}

func TestUnsetMilestoneClearsDetails(t *testing.T) {
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneInvoiceSent)
	_, err := ApplyMilestone(job, domain.MilestoneCustomerPaid, MilestoneRecord{
		Amount: decPtr("900.00"), Note: "wire",
	})
	require.NoError(t, err)

	require.NoError(t, UnsetMilestone(job, domain.MilestoneCustomerPaid))
	assert.Nil(t, job.CustomerPaidAt)
	assert.Nil(t, job.CustomerPaidAmount)
	assert.Empty(t, job.CustomerPaidNote)
}

func TestUnsetInvoiceSentAllowedWithCustomerPaid(t *testing.T) {
	// customer_paid does not depend on invoice_sent, so clearing the invoice
	// milestone leaves the payment in place.
	job := &domain.Job{}
	applyChain(t, job, domain.MilestoneCustomerPaid)

	require.NoError(t, UnsetMilestone(job, domain.MilestoneInvoiceSent))
	assert.Nil(t, job.InvoiceSentAt)
	assert.NotNil(t, job.CustomerPaidAt)
}

func TestUnsetCustomerPaidBlockedWhileJobPaid(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusPaid}
	applyChain(t, job, domain.MilestoneCustomerPaid)

	err := UnsetMilestone(job, domain.MilestoneCustomerPaid)
	var derr *domain.DependencyError
	require.ErrorAs(t, err, &derr)
}

func TestUnsetUnrecordedMilestoneFails(t *testing.T) {
	job := &domain.Job{}
	err := UnsetMilestone(job, domain.MilestoneInvoiceSent)
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr)
}
