package delivery

import (
	"context"
	"time"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

// Sender delivers a single email over some transport.
type Sender interface {
	Send(ctx context.Context, email *domain.OutboundEmail) error
}

// DedupeLedger claims a (day, recipient, event) triple before sending.
type DedupeLedger interface {
	MarkIfFirst(ctx context.Context, day domain.Day, recipientID, eventID string) (bool, error)
	Unmark(ctx context.Context, day domain.Day, recipientID, eventID string) error
}

// Dispatcher walks a send queue applying rate limiting, batch pauses,
// and bounded retries. It never aborts mid-queue: individual failures
// are counted and the remaining emails still go out.
type Dispatcher struct {
	sender     Sender
	ledger     DedupeLedger
	dryRun     bool
	rateDelay  time.Duration
	batchSize  int
	batchPause time.Duration
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	DryRun            bool
	RatePerMinute     int
	BatchSize         int
	BatchPauseSeconds int
	MaxRetries        int
	RetryDelaySeconds int

	// Ledger is optional; when set, already-sent triples are skipped.
	Ledger DedupeLedger
}

// NewDispatcher wires a dispatcher around a transport.
func NewDispatcher(sender Sender, opts DispatcherOptions) *Dispatcher {
	var rateDelay time.Duration
	if opts.RatePerMinute > 0 {
		rateDelay = time.Minute / time.Duration(opts.RatePerMinute)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &Dispatcher{
		sender:     sender,
		ledger:     opts.Ledger,
		dryRun:     opts.DryRun,
		rateDelay:  rateDelay,
		batchSize:  opts.BatchSize,
		batchPause: time.Duration(opts.BatchPauseSeconds) * time.Second,
		maxRetries: opts.MaxRetries,
		retryDelay: time.Duration(opts.RetryDelaySeconds) * time.Second,
		sleep:      time.Sleep,
	}
}

// SendQueue delivers the queue in order and returns per-run statistics
// plus the emails that were actually sent (or would have been, on a dry
// run). A context cancellation stops the queue early.
func (d *Dispatcher) SendQueue(ctx context.Context, queue []domain.OutboundEmail) (domain.DeliveryStats, []domain.OutboundEmail) {
	var stats domain.DeliveryStats
	var delivered []domain.OutboundEmail

	for i := range queue {
		if ctx.Err() != nil {
			logger.Warn("send queue interrupted", "remaining", len(queue)-i)
			break
		}
		email := &queue[i]
		stats.Attempted++

		if email.RecipientEmail == "" || email.Subject == "" || email.Body == "" {
			stats.Skipped++
			logger.Warn("skipping email with missing fields",
				"recipient", email.RecipientID, "event", email.EventID)
			continue
		}

		if d.ledger != nil && !d.dryRun {
			first, err := d.ledger.MarkIfFirst(ctx, email.Day, email.RecipientID, email.EventID)
			if err != nil {
				stats.Failed++
				logger.Error("ledger claim failed", "recipient", email.RecipientID,
					"event", email.EventID, "error", err.Error())
				continue
			}
			if !first {
				stats.Skipped++
				logger.Info("already sent in a previous run, skipping",
					"recipient", email.RecipientID, "event", email.EventID, "day", string(email.Day))
				continue
			}
		}

		if d.dryRun {
			stats.Sent++
			delivered = append(delivered, *email)
			logger.Info("dry run, would send", "to", email.RecipientEmail,
				"subject", email.Subject)
		} else if err := d.sendWithRetry(ctx, email); err != nil {
			stats.Failed++
			logger.Error("send failed", "to", email.RecipientEmail,
				"recipient", email.RecipientID, "error", err.Error())
			if d.ledger != nil {
				if uerr := d.ledger.Unmark(ctx, email.Day, email.RecipientID, email.EventID); uerr != nil {
					logger.Warn("ledger unmark failed", "recipient", email.RecipientID,
						"error", uerr.Error())
				}
			}
		} else {
			stats.Sent++
			delivered = append(delivered, *email)
			logger.Info("sent", "to", email.RecipientEmail, "recipient", email.RecipientID,
				"event", email.EventID, "day", string(email.Day))
		}

		if i < len(queue)-1 {
			if d.batchSize > 0 && (i+1)%d.batchSize == 0 {
				logger.Info("batch pause", "seconds", int(d.batchPause.Seconds()))
				d.sleep(d.batchPause)
			} else if d.rateDelay > 0 {
				d.sleep(d.rateDelay)
			}
		}
	}

	return stats, delivered
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, email *domain.OutboundEmail) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		lastErr = d.sender.Send(ctx, email)
		if lastErr == nil {
			return nil
		}
		if attempt < d.maxRetries {
			logger.Warn("send attempt failed, retrying",
				"attempt", attempt, "to", email.RecipientEmail, "error", lastErr.Error())
			d.sleep(d.retryDelay)
		}
	}
	return lastErr
}
