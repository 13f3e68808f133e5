package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/mail"
)

// MailWorker delivers jobs taken from the outbox queue.
type MailWorker struct {
	sender      mail.Dispatcher
	sendTimeout time.Duration
	otpTTL      time.Duration
	now         func() time.Time

	delivered atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

func NewMailWorker(sender mail.Dispatcher, sendTimeout, otpTTL time.Duration) *MailWorker {
	return &MailWorker{
		sender:      sender,
		sendTimeout: sendTimeout,
		otpTTL:      otpTTL,
		now:         time.Now,
	}
}

// HandleMailJob sends one job. One-time codes that have already expired
// are acknowledged without sending; the user has to request a new one.
func (w *MailWorker) HandleMailJob(ctx context.Context, job *amqp.MailJob) error {
	if w.isStale(job) {
		w.skipped.Add(1)
		slog.WarnContext(ctx, "Skipping expired one-time code mail",
			"job_id", job.ID,
			"kind", job.Kind,
			"queued_at", job.Timestamp.Format(time.RFC3339))
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	if err := w.sender.Send(sendCtx, mail.FromJob(job)); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("deliver job %s: %w", job.ID, err)
	}
	w.delivered.Add(1)
	return nil
}

func (w *MailWorker) isStale(job *amqp.MailJob) bool {
	if job.Kind != mail.KindVerifyOTP && job.Kind != mail.KindResetOTP {
		return false
	}
	if job.Timestamp.IsZero() || w.otpTTL <= 0 {
		return false
	}
	return w.now().Sub(job.Timestamp) > w.otpTTL
}

// Stats reports delivered, skipped and failed counts since start.
func (w *MailWorker) Stats() (delivered, skipped, failed int64) {
	return w.delivered.Load(), w.skipped.Load(), w.failed.Load()
}
