package pipeline

import (
	"context"
	"time"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

// ArtifactWriter persists the per-day output of a batch run.
type ArtifactWriter interface {
	WriteDayCollection(col *domain.DayCollection) error
}

// Orchestrator runs the batch: every recipient crossed with every event
// for each requested day. Pairs are processed sequentially in
// recipient-major order so artifacts are reproducible run to run.
type Orchestrator struct {
	processor *PairProcessor
	writer    ArtifactWriter
	now       func() time.Time
}

// NewOrchestrator wires an orchestrator. writer may be nil for in-memory
// runs (tests, the review API's regenerate endpoint).
func NewOrchestrator(processor *PairProcessor, writer ArtifactWriter, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{processor: processor, writer: writer, now: now}
}

// RunDay processes the full recipient × event cross product for one
// sequence day and persists the collection.
func (o *Orchestrator) RunDay(ctx context.Context, day domain.Day, recipients []*domain.Recipient, events []*domain.Event) (*domain.DayCollection, error) {
	col := &domain.DayCollection{
		Day:         day,
		GeneratedAt: o.now().UTC(),
		Emails:      make([]domain.ResultRecord, 0, len(recipients)*len(events)),
	}

	for _, r := range recipients {
		for _, e := range events {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			record := o.processor.Process(ctx, r, e, day)
			col.Emails = append(col.Emails, record)
			col.Statistics.Total++
			if record.Status == domain.StatusGenerated {
				col.Statistics.Generated++
			} else {
				col.Statistics.CountBlock(record.Reason)
			}
		}
	}

	logger.Info("day batch complete", "day", string(day),
		"total", col.Statistics.Total,
		"generated", col.Statistics.Generated,
		"blocked", col.Statistics.Blocked)

	if o.writer != nil {
		if err := o.writer.WriteDayCollection(col); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// RunDays processes several sequence days in order. A persistence
// failure on one day is logged and does not stop the remaining days;
// the failed day is omitted from the returned collections.
func (o *Orchestrator) RunDays(ctx context.Context, days []domain.Day, recipients []*domain.Recipient, events []*domain.Event) ([]*domain.DayCollection, error) {
	cols := make([]*domain.DayCollection, 0, len(days))
	for _, day := range days {
		col, err := o.RunDay(ctx, day, recipients, events)
		if err != nil {
			if ctx.Err() != nil {
				return cols, err
			}
			logger.Warn("day batch failed, continuing", "day", string(day), "error", err.Error())
			continue
		}
		cols = append(cols, col)
	}
	return cols, nil
}
