package workflow

import (
	"time"

	"github.com/pressgate/broker-api/internal/domain"
)

// statusOrder is the production pipeline. Advancing moves exactly one step;
// paid is terminal.
var statusOrder = []domain.JobStatus{
	domain.JobStatusNew,
	domain.JobStatusAwaitingProof,
	domain.JobStatusProofReceived,
	domain.JobStatusProofSent,
	domain.JobStatusAwaitingCustomer,
	domain.JobStatusApproved,
	domain.JobStatusInProduction,
	domain.JobStatusCompleted,
	domain.JobStatusInvoiced,
	domain.JobStatusPaid,
}

// StatusOrder returns the pipeline in order.
func StatusOrder() []domain.JobStatus {
	out := make([]domain.JobStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// StatusRank returns a status's position in the pipeline, or -1 for an
// unknown status.
func StatusRank(s domain.JobStatus) int {
	for i, o := range statusOrder {
		if o == s {
			return i
		}
	}
	return -1
}

// NextStatus returns the status after s, or false when s is terminal or
// unknown.
func NextStatus(s domain.JobStatus) (domain.JobStatus, bool) {
	idx := StatusRank(s)
	if idx < 0 || idx == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[idx+1], true
}

// AdvanceStatus moves the job one step along the pipeline, starting from the
// effective status so an advance picks up from wherever an override parked
// the job. Moving into paid requires the customer-paid milestone; an explicit
// advance clears any standing override since the operator is back to driving
// the pipeline.
func AdvanceStatus(job *domain.Job) (domain.JobStatus, error) {
	from := job.EffectiveStatus()
	next, ok := NextStatus(from)
	if !ok {
		if from == domain.JobStatusPaid {
			return "", domain.NewPreconditionError("advance status", "job is already paid")
		}
		return "", domain.NewValidationError("status", "job has an unknown status")
	}
	if next == domain.JobStatusPaid && job.CustomerPaidAt == nil {
		return "", domain.NewPreconditionError("advance status", "customer payment has not been recorded")
	}

	job.Status = next
	clearOverride(job)
	return next, nil
}

// OverrideStatus sets a manual status override. The override is a tagged
// value: who set it and when travel with it, and it survives until cleared or
// superseded by an advance. Overriding to paid carries the same customer-paid
// requirement as advancing there.
func OverrideStatus(job *domain.Job, target domain.JobStatus, setBy string, at time.Time) error {
	if !target.IsValid() {
		return domain.NewValidationError("status", "unknown job status")
	}
	if target == domain.JobStatusPaid && job.CustomerPaidAt == nil {
		return domain.NewPreconditionError("override status", "customer payment has not been recorded")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	job.OverrideStatus = &target
	job.OverrideSetBy = setBy
	job.OverrideSetAt = &at
	return nil
}

// ClearOverride removes a manual override so the job reverts to its computed
// status. Clearing when no override is set is a no-op.
func ClearOverride(job *domain.Job) {
	clearOverride(job)
}

func clearOverride(job *domain.Job) {
	job.OverrideStatus = nil
	job.OverrideSetBy = ""
	job.OverrideSetAt = nil
}
