package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/erp"
	"github.com/pressgate/broker-api/internal/repository"
)

// Discrepancy is one mismatch between the ERP and a job's recorded milestones.
type Discrepancy struct {
	JobNumber string `json:"jobNumber"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
}

// InvoiceSource is the slice of the accounting system reconciliation reads.
// *erp.Client implements it; tests substitute a stub.
type InvoiceSource interface {
	IsEnabled() bool
	FetchPostedInvoices(ctx context.Context, jobNumbers []string) ([]erp.PostedInvoice, error)
}

// ReconcileService compares jobs with a recorded invoice against the posted
// invoices and registered payments in the accounting system. It only reports;
// milestones are recorded by operators, never by reconciliation.
type ReconcileService struct {
	jobRepo *repository.JobRepository
	erp     InvoiceSource
	logger  *zap.Logger
}

// NewReconcileService creates a ReconcileService
func NewReconcileService(jobRepo *repository.JobRepository, source InvoiceSource, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{jobRepo: jobRepo, erp: source, logger: logger}
}

// Reconcile checks every invoiced-but-unpaid job against the ERP and returns
// the discrepancies found.
func (s *ReconcileService) Reconcile(ctx context.Context) ([]Discrepancy, error) {
	if s.erp == nil || !s.erp.IsEnabled() {
		return nil, fmt.Errorf("erp connection is not enabled")
	}

	jobs, err := s.jobRepo.ListInvoicedUnpaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoiced jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	jobNumbers := make([]string, len(jobs))
	byNumber := make(map[string]*domain.Job, len(jobs))
	for i := range jobs {
		jobNumbers[i] = jobs[i].JobNumber
		byNumber[jobs[i].JobNumber] = &jobs[i]
	}

	invoices, err := s.erp.FetchPostedInvoices(ctx, jobNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posted invoices: %w", err)
	}

	posted := make(map[string]erp.PostedInvoice, len(invoices))
	for _, inv := range invoices {
		posted[inv.Reference] = inv
	}

	var discrepancies []Discrepancy
	for _, job := range jobs {
		inv, ok := posted[job.JobNumber]
		if !ok {
			discrepancies = append(discrepancies, Discrepancy{
				JobNumber: job.JobNumber,
				Kind:      "missing_in_erp",
				Detail:    "invoice milestone recorded but no matching invoice posted in the ERP",
			})
			continue
		}
		if inv.PaidAt != nil && job.CustomerPaidAt == nil {
			discrepancies = append(discrepancies, Discrepancy{
				JobNumber: job.JobNumber,
				Kind:      "payment_not_recorded",
				Detail: fmt.Sprintf("ERP invoice %s registered paid on %s but the customer-paid milestone is not recorded",
					inv.InvoiceNumber, inv.PaidAt.Format("2006-01-02")),
			})
		}
		if !inv.Amount.Equal(job.SellPrice) {
			discrepancies = append(discrepancies, Discrepancy{
				JobNumber: job.JobNumber,
				Kind:      "amount_mismatch",
				Detail: fmt.Sprintf("ERP invoice %s posted at %s but the job sell price is %s",
					inv.InvoiceNumber, inv.Amount.StringFixed(2), job.SellPrice.StringFixed(2)),
			})
		}
	}

	for _, d := range discrepancies {
		s.logger.Warn("reconciliation discrepancy",
			zap.String("job_number", d.JobNumber),
			zap.String("kind", d.Kind),
			zap.String("detail", d.Detail))
	}

	s.logger.Info("reconciliation completed",
		zap.Int("jobs_checked", len(jobs)),
		zap.Int("discrepancies", len(discrepancies)))

	return discrepancies, nil
}
