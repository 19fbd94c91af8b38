// Package workflow holds the pure state machines of the broker: the payment
// milestone chain, the job production lifecycle and the vendor PO readiness
// gate. Functions here mutate the passed job in memory only; persistence and
// side effects (invoice dispatch, activity logging) belong to the services.
package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pressgate/broker-api/internal/domain"
)

// milestoneOrder lists the payment chain in reporting order.
var milestoneOrder = []domain.PaymentMilestone{
	domain.MilestoneInvoiceSent,
	domain.MilestoneCustomerPaid,
	domain.MilestoneIntermediaryPaid,
	domain.MilestoneFinalVendorPaid,
}

// milestonePrereq maps each milestone to the one it requires. customer_paid
// has no prerequisite: payments are tracked manually and may land before the
// invoice milestone is recorded.
var milestonePrereq = map[domain.PaymentMilestone]domain.PaymentMilestone{
	domain.MilestoneIntermediaryPaid: domain.MilestoneCustomerPaid,
	domain.MilestoneFinalVendorPaid:  domain.MilestoneIntermediaryPaid,
}

// MilestoneRecord carries the recordable details of one milestone. Amount and
// note only apply to the three payment milestones, not to invoice_sent.
type MilestoneRecord struct {
	At     time.Time
	Amount *decimal.Decimal
	Note   string
}

// MilestoneOrder returns the milestone chain in order.
func MilestoneOrder() []domain.PaymentMilestone {
	out := make([]domain.PaymentMilestone, len(milestoneOrder))
	copy(out, milestoneOrder)
	return out
}

func milestoneIndex(m domain.PaymentMilestone) int {
	for i, o := range milestoneOrder {
		if o == m {
			return i
		}
	}
	return -1
}

// ApplyMilestone records a milestone on the job. Recording an already-set
// milestone updates its amount and note in place. The returned invoiceDue is
// true when this call set intermediary_paid and the downstream invoice to the
// final vendor has not been dispatched yet; the caller owns the dispatch and
// marks it via MarkDownstreamInvoiceSent, so retries stay idempotent.
func ApplyMilestone(job *domain.Job, m domain.PaymentMilestone, rec MilestoneRecord) (invoiceDue bool, err error) {
	idx := milestoneIndex(m)
	if idx < 0 {
		return false, domain.NewValidationError("milestone", "unknown payment milestone")
	}
	if prereq, ok := milestonePrereq[m]; ok && job.MilestoneAt(prereq) == nil {
		return false, domain.NewPreconditionError(
			"record "+string(m),
			fmt.Sprintf("%s has not been recorded yet", prereq),
		)
	}

	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	setMilestone(job, m, &at, rec.Amount, rec.Note)

	invoiceDue = m == domain.MilestoneIntermediaryPaid && job.DownstreamInvoiceSentAt == nil
	return invoiceDue, nil
}

// UnsetMilestone clears a recorded milestone. It refuses when a milestone
// that requires this one is still set, and refuses to clear customer_paid
// while the job status depends on it.
func UnsetMilestone(job *domain.Job, m domain.PaymentMilestone) error {
	if milestoneIndex(m) < 0 {
		return domain.NewValidationError("milestone", "unknown payment milestone")
	}
	if job.MilestoneAt(m) == nil {
		return domain.NewPreconditionError("unset "+string(m), "milestone is not recorded")
	}
	for dependent, prereq := range milestonePrereq {
		if prereq == m && job.MilestoneAt(dependent) != nil {
			return domain.NewDependencyError("unset "+string(m), string(dependent))
		}
	}
	if m == domain.MilestoneCustomerPaid && job.EffectiveStatus() == domain.JobStatusPaid {
		return domain.NewDependencyError("unset "+string(m), "job status paid")
	}

	setMilestone(job, m, nil, nil, "")
	return nil
}

// MarkDownstreamInvoiceSent records a successful downstream invoice dispatch.
// Once set, later intermediary-paid recordings never re-dispatch.
func MarkDownstreamInvoiceSent(job *domain.Job, sentTo string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	job.DownstreamInvoiceSentAt = &at
	job.DownstreamInvoiceSentTo = sentTo
}

func setMilestone(job *domain.Job, m domain.PaymentMilestone, at *time.Time, amount *decimal.Decimal, note string) {
	switch m {
	case domain.MilestoneInvoiceSent:
		job.InvoiceSentAt = at
	case domain.MilestoneCustomerPaid:
		job.CustomerPaidAt = at
		job.CustomerPaidAmount = amount
		job.CustomerPaidNote = note
	case domain.MilestoneIntermediaryPaid:
		job.PartnerPaidAt = at
		job.PartnerPaidAmount = amount
		job.PartnerPaidNote = note
	case domain.MilestoneFinalVendorPaid:
		job.VendorPaidAt = at
		job.VendorPaidAmount = amount
		job.VendorPaidNote = note
	}
}
