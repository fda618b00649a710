package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fundingforward/outreach/internal/content"
	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/gate"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

// PairProcessor turns one (recipient, event, day) triple into a result
// record. The gate decides eligibility first; the content provider is
// only ever invoked for approved pairs.
type PairProcessor struct {
	gate     *gate.Gate
	provider content.Provider
	fallback *content.FallbackProvider
	now      func() time.Time
}

// NewPairProcessor wires a processor. fallback is the last-resort
// renderer used when the provider itself returns an error; now is
// injectable for tests and defaults to time.Now.
func NewPairProcessor(g *gate.Gate, provider content.Provider, fallback *content.FallbackProvider, now func() time.Time) *PairProcessor {
	if now == nil {
		now = time.Now
	}
	return &PairProcessor{gate: g, provider: provider, fallback: fallback, now: now}
}

// Process evaluates eligibility and, for approved pairs, generates
// content. Blocked pairs carry their reason and warnings but no email,
// tone, or generation timestamp. Process never fails a pair outright:
// content errors degrade to fallback output.
func (p *PairProcessor) Process(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) domain.ResultRecord {
	overlap := p.gate.Overlap(r, e)
	if overlap == nil {
		overlap = []string{}
	}
	record := domain.ResultRecord{
		RecipientID:  r.ID,
		EventID:      e.ID,
		Day:          day,
		TopicOverlap: overlap,
		Warnings:     []string{},
	}

	decision := p.gate.Evaluate(r, e)
	record.Warnings = append(record.Warnings, decision.Warnings...)

	if !decision.ShouldSend {
		record.Status = domain.StatusBlocked
		record.Reason = decision.Reason
		logger.Debug("pair blocked", "recipient", r.ID, "event", e.ID,
			"day", string(day), "reason", string(decision.Reason))
		return record
	}

	result, err := p.provider.Generate(ctx, r, e, day)
	if err != nil {
		// Providers are expected to degrade internally; this is the
		// safety net for ones that do not.
		cause := err
		logger.Warn("content provider failed, using fallback",
			"recipient", r.ID, "event", e.ID, "day", string(day), "error", cause.Error())
		result, err = p.fallback.Generate(ctx, r, e, day)
		if err != nil {
			result = &content.Result{
				Subject:      fmt.Sprintf("%s - Opportunity for %s", e.Title, r.Organization),
				Body:         fmt.Sprintf("Hi %s,\n\nI wanted to share %s with you.", r.Name, e.Title),
				UsedFallback: true,
			}
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("Used fallback due to: %v", cause))
	}

	// Generated records carry no reason; the status already says why.
	generatedAt := p.now().UTC()
	record.Status = domain.StatusGenerated
	record.GeneratedAt = &generatedAt
	record.Tone = content.ToneFromEngagement(r.EngagementScore)
	record.Email = &domain.EmailContent{Subject: result.Subject, Body: result.Body}
	record.Warnings = append(record.Warnings, result.Warnings...)
	return record
}
