// Package invoice handles downstream invoice dispatch to the final
// fulfillment vendor. Dispatch is triggered by the intermediary-paid payment
// milestone; a failed dispatch never rolls the milestone back.
package invoice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
)

// Receipt confirms a dispatched downstream invoice.
type Receipt struct {
	SentTo string
	SentAt time.Time
}

// Dispatcher sends the downstream invoice for a job to its final vendor.
// Implementations must be safe to retry: the payment service only calls
// SendDownstreamInvoice while the job carries no dispatch record.
type Dispatcher interface {
	SendDownstreamInvoice(ctx context.Context, job *domain.Job) (Receipt, error)
}

// LogDispatcher records the dispatch in the application log. It stands in
// for a mail or EDI integration in development and in tests.
type LogDispatcher struct {
	logger *zap.Logger
	from   string
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *zap.Logger, from string) *LogDispatcher {
	return &LogDispatcher{logger: logger, from: from}
}

// SendDownstreamInvoice logs the invoice and reports the vendor's email as
// the destination.
func (d *LogDispatcher) SendDownstreamInvoice(ctx context.Context, job *domain.Job) (Receipt, error) {
	sentTo := ""
	if job.Vendor != nil {
		sentTo = job.Vendor.Email
	}

	d.logger.Info("dispatching downstream invoice",
		zap.String("job_id", job.ID.String()),
		zap.String("job_number", job.JobNumber),
		zap.String("from", d.from),
		zap.String("sent_to", sentTo),
	)

	return Receipt{SentTo: sentTo, SentAt: time.Now().UTC()}, nil
}
