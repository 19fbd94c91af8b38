package workflow

import (
	"fmt"
	"time"

	"github.com/pressgate/broker-api/internal/domain"
)

// ReadinessResult is the rolled-up readiness of a job for vendor PO issuance.
// Blockers name the unsatisfied flags; once the PO has been sent the gate
// reports sent and remaining flags demote to warnings.
type ReadinessResult struct {
	Status   domain.ReadinessStatus
	Blockers []string
	Warnings []string
}

// jobFlags pairs each job-level readiness flag with its reporting name.
func jobFlags(job *domain.Job) []struct {
	name  string
	state domain.ReadinessState
} {
	return []struct {
		name  string
		state domain.ReadinessState
	}{
		{"artwork", job.ArtworkStatus},
		{"data files", job.DataFilesStatus},
		{"mailing info", job.MailingInfoStatus},
		{"materials", job.MaterialsStatus},
		{"versions", job.VersionsStatus},
	}
}

// EvaluateReadiness rolls up the job's five readiness flags and the flags of
// every component. A flag blocks only while pending; received and
// not-applicable both satisfy the gate.
func EvaluateReadiness(job *domain.Job, components []domain.JobComponent) ReadinessResult {
	var open []string
	for _, f := range jobFlags(job) {
		if !f.state.Satisfied() {
			open = append(open, f.name+" pending")
		}
	}
	for _, c := range components {
		if !c.ArtworkStatus.Satisfied() {
			open = append(open, fmt.Sprintf("component %s: artwork pending", c.Name))
		}
		if !c.MaterialStatus.Satisfied() {
			open = append(open, fmt.Sprintf("component %s: material pending", c.Name))
		}
	}

	if job.POSentAt != nil {
		// Sending is one-way; a flag flipped back after sending never
		// retroactively blocks the PO.
		return ReadinessResult{Status: domain.ReadinessStatusSent, Warnings: open}
	}
	if len(open) > 0 {
		return ReadinessResult{Status: domain.ReadinessStatusIncomplete, Blockers: open}
	}
	return ReadinessResult{Status: domain.ReadinessStatusReady}
}

// MarkPOSent records vendor PO transmission. It refuses while the gate is
// incomplete and refuses a double send.
func MarkPOSent(job *domain.Job, components []domain.JobComponent, at time.Time) error {
	res := EvaluateReadiness(job, components)
	switch res.Status {
	case domain.ReadinessStatusSent:
		return domain.NewPreconditionError("send purchase order", "purchase order has already been sent")
	case domain.ReadinessStatusIncomplete:
		return domain.NewPreconditionError("send purchase order", "readiness gate is incomplete: "+res.Blockers[0])
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	job.POSentAt = &at
	return nil
}
