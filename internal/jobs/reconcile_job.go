package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/service"
)

// ReconcileJobName is the name of the ERP reconciliation job
const ReconcileJobName = "erp_reconcile"

// Reconciler runs the ERP comparison. The interface keeps the job decoupled
// from the service constructor wiring.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]service.Discrepancy, error)
}

// ReconcileJob compares recorded payment milestones against the ERP on a
// schedule. It reports discrepancies through the log; it never mutates jobs.
type ReconcileJob struct {
	reconciler Reconciler
	logger     *zap.Logger
	timeout    time.Duration
}

// NewReconcileJob creates a new ERP reconciliation job.
func NewReconcileJob(reconciler Reconciler, logger *zap.Logger, timeout time.Duration) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes the reconciliation job.
// This is called by the scheduler according to the cron expression.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting ERP reconciliation job")

	discrepancies, err := j.reconciler.Reconcile(ctx)
	if err != nil {
		j.logger.Error("ERP reconciliation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("ERP reconciliation job completed",
		zap.Int("discrepancies", len(discrepancies)),
		zap.Duration("duration", time.Since(start)))
}

// RegisterReconcileJob registers the ERP reconciliation job with the scheduler.
func RegisterReconcileJob(scheduler *Scheduler, reconciler Reconciler, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewReconcileJob(reconciler, logger, timeout)
	return scheduler.AddJob(ReconcileJobName, cronExpr, job.Run)
}
