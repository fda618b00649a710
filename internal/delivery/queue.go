// Package delivery sends generated emails through a pluggable transport
// with rate limiting, batch pauses, and retries.
package delivery

import (
	"github.com/fundingforward/outreach/internal/domain"
)

// BuildQueue turns a day collection into the outbound send queue.
// Blocked records and generated records with incomplete content are
// excluded; records whose recipient is no longer in the source file are
// kept with an empty address so the dispatcher counts them as skipped
// rather than silently dropping them.
func BuildQueue(col *domain.DayCollection, recipients []*domain.Recipient) []domain.OutboundEmail {
	index := make(map[string]*domain.Recipient, len(recipients))
	for _, r := range recipients {
		index[r.ID] = r
	}

	queue := make([]domain.OutboundEmail, 0, len(col.Emails))
	for _, rec := range col.Emails {
		if rec.Status != domain.StatusGenerated {
			continue
		}
		if rec.Email == nil || rec.Email.Subject == "" || rec.Email.Body == "" {
			continue
		}

		out := domain.OutboundEmail{
			RecipientName: "there",
			Subject:       rec.Email.Subject,
			Body:          rec.Email.Body,
			RecipientID:   rec.RecipientID,
			EventID:       rec.EventID,
			Day:           col.Day,
		}
		if r, ok := index[rec.RecipientID]; ok {
			out.RecipientEmail = r.Email
			if r.Name != "" {
				out.RecipientName = r.Name
			}
		}
		queue = append(queue, out)
	}
	return queue
}
