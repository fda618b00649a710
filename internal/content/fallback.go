package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/fundingforward/outreach/internal/domain"
)

// Fallback templates. Missing values render as bracketed placeholders so
// a reviewer can spot them before a send.
const (
	fallbackSubjectTemplate = `{{ event_title }} - Opportunity for {{ organization }}`

	fallbackBodyTemplate = `Hi {{ name }},

I wanted to share {{ event_title }} organised by {{ organizer }}.

Grant amount: {{ amount_range }}
Application deadline: {{ deadline }}

This may be relevant for your work at {{ organization }}.

Best regards,

{{ sender_name }}{% if sender_title != "" %}
{{ sender_title }}{% endif %}
{{ sender_org }}`
)

// FallbackProvider renders deterministic template-based emails. It is
// both the --no-ai backend and the safety net behind the AI providers,
// so Generate never returns an error.
type FallbackProvider struct {
	subject *liquid.Template
	body    *liquid.Template
	sender  SenderIdentity
}

// NewFallbackProvider compiles the fallback templates once up front.
func NewFallbackProvider(sender SenderIdentity) (*FallbackProvider, error) {
	engine := liquid.NewEngine()
	subject, err := engine.ParseString(fallbackSubjectTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse fallback subject template: %w", err)
	}
	body, err := engine.ParseString(fallbackBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse fallback body template: %w", err)
	}
	return &FallbackProvider{subject: subject, body: body, sender: sender}, nil
}

// Generate renders the deterministic email for a pair. The returned
// result is marked UsedFallback so downstream reporting can tell AI
// output from template output.
func (p *FallbackProvider) Generate(_ context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*Result, error) {
	bindings := map[string]interface{}{
		"name":         orPlaceholder(r.Name, "there"),
		"organization": orPlaceholder(r.Organization, "your organization"),
		"event_title":  orPlaceholder(e.Title, "this opportunity"),
		"organizer":    orPlaceholder(e.Organizer, "the organizer"),
		"amount_range": orPlaceholder(e.Metadata.AmountRange, "[amount]"),
		"deadline":     orPlaceholder(e.Metadata.ApplicationDeadline, "[deadline]"),
		"sender_name":  p.sender.Name,
		"sender_title": p.sender.Title,
		"sender_org":   p.sender.Organization,
		"day":          string(day),
	}

	subject, err := p.subject.RenderString(bindings)
	if err != nil {
		subject = fmt.Sprintf("%s - Opportunity for %s", e.Title, r.Organization)
	}
	body, err := p.body.RenderString(bindings)
	if err != nil {
		body = fmt.Sprintf("Hi %s,\n\nI wanted to share %s organised by %s.\n\nBest regards,\n\n%s",
			r.Name, e.Title, e.Organizer, p.sender.Name)
	}

	return &Result{
		Subject:      strings.TrimSpace(subject),
		Body:         strings.TrimSpace(body),
		UsedFallback: true,
	}, nil
}

func orPlaceholder(val, placeholder string) string {
	if strings.TrimSpace(val) == "" {
		return placeholder
	}
	return val
}
