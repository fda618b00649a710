package content

import (
	"context"

	"github.com/fundingforward/outreach/internal/domain"
)

// Result is the outcome of one content generation call.
type Result struct {
	Subject      string
	Body         string
	UsedFallback bool
	Warnings     []string
}

// Provider produces email content for an approved (recipient, event, day)
// triple. Implementations must not be called for blocked pairs; the
// eligibility gate decides that upstream.
type Provider interface {
	Generate(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*Result, error)
}

// SenderIdentity is the signature block appended to generated emails.
type SenderIdentity struct {
	Name         string
	Title        string
	Organization string
}
