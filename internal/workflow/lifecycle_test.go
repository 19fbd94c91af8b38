package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
)

func TestAdvanceStatusWalksFullPipeline(t *testing.T) {
	now := time.Now()
	job := &domain.Job{Status: domain.JobStatusNew, CustomerPaidAt: &now}

	order := StatusOrder()
	for _, want := range order[1:] {
		got, err := AdvanceStatus(job)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, job.Status)
	}

	_, err := AdvanceStatus(job)
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr, "paid is terminal")
}

func TestAdvanceToPaidRequiresCustomerPayment(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusInvoiced}

	_, err := AdvanceStatus(job)
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.JobStatusInvoiced, job.Status, "failed advance must not move the job")

	now := time.Now()
	job.CustomerPaidAt = &now
	got, err := AdvanceStatus(job)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPaid, got)
}

func TestAdvanceStartsFromEffectiveStatus(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusNew}
	require.NoError(t, OverrideStatus(job, domain.JobStatusInProduction, "mats", time.Now()))

	got, err := AdvanceStatus(job)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got)
	assert.Nil(t, job.Override(), "explicit advance supersedes the override")
}

func TestOverrideStatus(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusNew}
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, OverrideStatus(job, domain.JobStatusCompleted, "mats", at))

	o := job.Override()
	require.NotNil(t, o)
	assert.Equal(t, domain.JobStatusCompleted, o.Status)
	assert.Equal(t, "mats", o.SetBy)
	assert.Equal(t, at, o.SetAt)

	assert.Equal(t, domain.JobStatusCompleted, job.EffectiveStatus())
	assert.Equal(t, domain.JobStatusNew, job.Status, "computed status is preserved under the override")

	ClearOverride(job)
	assert.Nil(t, job.Override())
	assert.Equal(t, domain.JobStatusNew, job.EffectiveStatus())
}

func TestOverrideToPaidRequiresCustomerPayment(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusNew}
	err := OverrideStatus(job, domain.JobStatusPaid, "mats", time.Now())
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr)

	now := time.Now()
	job.CustomerPaidAt = &now
	require.NoError(t, OverrideStatus(job, domain.JobStatusPaid, "mats", time.Now()))
}

func TestOverrideRejectsUnknownStatus(t *testing.T) {
	job := &domain.Job{Status: domain.JobStatusNew}
	err := OverrideStatus(job, domain.JobStatus("shipped"), "mats", time.Now())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestStatusRankAndNext(t *testing.T) {
	assert.Equal(t, 0, StatusRank(domain.JobStatusNew))
	assert.Equal(t, 9, StatusRank(domain.JobStatusPaid))
	assert.Equal(t, -1, StatusRank(domain.JobStatus("bogus")))

	next, ok := NextStatus(domain.JobStatusCompleted)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusInvoiced, next)

	_, ok = NextStatus(domain.JobStatusPaid)
	assert.False(t, ok)
}
