package gate

import (
	"fmt"
	"time"

	"github.com/fundingforward/outreach/internal/domain"
)

// Gate evaluates whether a (recipient, event) pair is eligible for an
// outreach email. Evaluate is deterministic for a fixed clock and has no
// side effects, so callers may re-run it freely.
type Gate struct {
	validator  *Validator
	loc        *time.Location
	now        func() time.Time
	minOverlap int
}

// New builds a Gate. loc is the reference location for zone-naive
// deadlines; now is injectable for tests and defaults to time.Now.
func New(rules Rules, loc *time.Location, now func() time.Time) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	rules = rules.normalized()
	return &Gate{
		validator:  NewValidator(rules),
		loc:        loc,
		now:        now,
		minOverlap: rules.MinTopicOverlap,
	}
}

// Validator exposes the gate's validator for standalone record checks.
func (g *Gate) Validator() *Validator { return g.validator }

// Evaluate runs the eligibility checks in order and stops at the first
// failure. Blocked decisions report exactly one reason; the warnings
// explain it. An approved decision may still carry warnings, for example
// when a deadline could not be parsed and was skipped.
func (g *Gate) Evaluate(r *domain.Recipient, e *domain.Event) domain.Decision {
	// Both records are validated so the warnings report every structural
	// problem at once, not just the first record's.
	errs := g.validator.ValidateRecipient(r)
	errs = append(errs, g.validator.ValidateEvent(e)...)
	if len(errs) > 0 {
		return blocked(domain.ReasonValidationFailed, errs)
	}

	if r.OptOut {
		return blocked(domain.ReasonOptedOut,
			[]string{"Recipient has opted out - DO NOT SEND"})
	}

	var warnings []string
	if raw := e.Metadata.ApplicationDeadline; raw != "" {
		deadline, err := ParseDeadline(raw, g.loc)
		if err != nil {
			warnings = append(warnings,
				fmt.Sprintf("Could not parse application deadline %q - skipping deadline check", raw))
		} else if deadline.Before(g.now()) {
			return blocked(domain.ReasonDeadlinePassed,
				[]string{"Application deadline has passed - DO NOT SEND"})
		}
	}

	overlap := TopicOverlap(r.Topics, e.Tags)
	if len(overlap) < g.minOverlap {
		return blocked(domain.ReasonNoTopicMatch, []string{
			fmt.Sprintf("Insufficient topic overlap. Recipient: %v | Event: %v | Overlap: %v",
				r.Topics, e.Tags, overlap),
		})
	}

	return domain.Decision{
		ShouldSend: true,
		Reason:     domain.ReasonApproved,
		Warnings:   warnings,
	}
}

// Overlap reports the topic overlap for a pair without running the full
// gate, used for result records of blocked pairs.
func (g *Gate) Overlap(r *domain.Recipient, e *domain.Event) []string {
	return TopicOverlap(r.Topics, e.Tags)
}

func blocked(reason domain.BlockReason, warnings []string) domain.Decision {
	return domain.Decision{ShouldSend: false, Reason: reason, Warnings: warnings}
}
