package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
)

func readyJob() *domain.Job {
	return &domain.Job{
		ArtworkStatus:     domain.ReadinessReceived,
		DataFilesStatus:   domain.ReadinessReceived,
		MailingInfoStatus: domain.ReadinessNotApplicable,
		MaterialsStatus:   domain.ReadinessReceived,
		VersionsStatus:    domain.ReadinessNotApplicable,
	}
}

func TestEvaluateReadinessReady(t *testing.T) {
	res := EvaluateReadiness(readyJob(), nil)
	assert.Equal(t, domain.ReadinessStatusReady, res.Status)
	assert.Empty(t, res.Blockers)
}

func TestEvaluateReadinessNotApplicableSatisfies(t *testing.T) {
	job := readyJob()
	job.ArtworkStatus = domain.ReadinessNotApplicable
	res := EvaluateReadiness(job, nil)
	assert.Equal(t, domain.ReadinessStatusReady, res.Status)
}

func TestEvaluateReadinessIncompleteNamesBlockers(t *testing.T) {
	job := readyJob()
	job.ArtworkStatus = domain.ReadinessPending
	job.MaterialsStatus = domain.ReadinessPending

	res := EvaluateReadiness(job, nil)
	assert.Equal(t, domain.ReadinessStatusIncomplete, res.Status)
	assert.Equal(t, []string{"artwork pending", "materials pending"}, res.Blockers)
}

func TestEvaluateReadinessComponentRollup(t *testing.T) {
	components := []domain.JobComponent{
		{Name: "envelope", ArtworkStatus: domain.ReadinessReceived, MaterialStatus: domain.ReadinessPending},
		{Name: "insert", ArtworkStatus: domain.ReadinessNotApplicable, MaterialStatus: domain.ReadinessReceived},
	}
	res := EvaluateReadiness(readyJob(), components)
	assert.Equal(t, domain.ReadinessStatusIncomplete, res.Status)
	assert.Equal(t, []string{"component envelope: material pending"}, res.Blockers)
}

func TestEvaluateReadinessSentNeverBlocks(t *testing.T) {
	job := readyJob()
	now := time.Now()
	job.POSentAt = &now
	job.ArtworkStatus = domain.ReadinessPending // flipped back after sending

	res := EvaluateReadiness(job, nil)
	assert.Equal(t, domain.ReadinessStatusSent, res.Status)
	assert.Empty(t, res.Blockers)
	assert.Equal(t, []string{"artwork pending"}, res.Warnings)
}

func TestMarkPOSent(t *testing.T) {
	job := readyJob()
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, MarkPOSent(job, nil, at))
	require.NotNil(t, job.POSentAt)
	assert.Equal(t, at, *job.POSentAt)
}

func TestMarkPOSentBlockedWhileIncomplete(t *testing.T) {
	job := readyJob()
	job.DataFilesStatus = domain.ReadinessPending

	err := MarkPOSent(job, nil, time.Now())
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.Nil(t, job.POSentAt)
}

func TestMarkPOSentRefusesDoubleSend(t *testing.T) {
	job := readyJob()
	require.NoError(t, MarkPOSent(job, nil, time.Now()))

	err := MarkPOSent(job, nil, time.Now())
	var perr *domain.PreconditionError
	require.ErrorAs(t, err, &perr)
}
