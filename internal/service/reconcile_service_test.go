package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/erp"
	"github.com/pressgate/broker-api/internal/repository"
)

// stubInvoiceSource serves a fixed set of posted invoices.
type stubInvoiceSource struct {
	invoices []erp.PostedInvoice
}

func (s *stubInvoiceSource) IsEnabled() bool { return true }

func (s *stubInvoiceSource) FetchPostedInvoices(ctx context.Context, jobNumbers []string) ([]erp.PostedInvoice, error) {
	return s.invoices, nil
}

func createInvoicedJob(t *testing.T, db *gorm.DB, jobSvc *JobService, customerID, title, sellPrice string) string {
	t.Helper()
	dto, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      title,
		CustomerID: customerID,
		SellPrice:  sellPrice,
	})
	require.NoError(t, err)

	jobRepo := repository.NewJobRepository(db)
	job, err := jobRepo.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	now := time.Now().UTC()
	job.InvoiceSentAt = &now
	require.NoError(t, jobRepo.UpdateWithVersion(context.Background(), job, job.Version))
	return dto.JobNumber
}

func TestReconcileReportsDiscrepancies(t *testing.T) {
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	paidInERP := createInvoicedJob(t, db, jobSvc, customer.ID.String(), "Catalog", "900")
	missingInERP := createInvoicedJob(t, db, jobSvc, customer.ID.String(), "Poster", "1200")
	wrongAmount := createInvoicedJob(t, db, jobSvc, customer.ID.String(), "Flyer", "500")

	paidAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	source := &stubInvoiceSource{invoices: []erp.PostedInvoice{
		{
			InvoiceNumber: "INV-1001",
			Reference:     paidInERP,
			Amount:        decimal.RequireFromString("900"),
			PaidAt:        &paidAt,
		},
		{
			InvoiceNumber: "INV-1002",
			Reference:     wrongAmount,
			Amount:        decimal.RequireFromString("450"),
		},
	}}

	svc := NewReconcileService(repository.NewJobRepository(db), source, zap.NewNop())
	discrepancies, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, discrepancies, 3)

	kinds := make(map[string]string, len(discrepancies))
	for _, d := range discrepancies {
		kinds[d.JobNumber] = d.Kind
	}
	assert.Equal(t, "payment_not_recorded", kinds[paidInERP])
	assert.Equal(t, "missing_in_erp", kinds[missingInERP])
	assert.Equal(t, "amount_mismatch", kinds[wrongAmount])
}

func TestReconcileCleanWhenERPAgrees(t *testing.T) {
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	jobNumber := createInvoicedJob(t, db, jobSvc, customer.ID.String(), "Catalog", "900")

	source := &stubInvoiceSource{invoices: []erp.PostedInvoice{
		{InvoiceNumber: "INV-1001", Reference: jobNumber, Amount: decimal.RequireFromString("900")},
	}}

	svc := NewReconcileService(repository.NewJobRepository(db), source, zap.NewNop())
	discrepancies, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestReconcileRefusedWithoutERP(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconcileService(repository.NewJobRepository(db), nil, zap.NewNop())

	_, err := svc.Reconcile(context.Background())
	assert.Error(t, err)
}
