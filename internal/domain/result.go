package domain

import "time"

// BlockReason enumerates the outcome of an eligibility evaluation.
// Everything except ReasonApproved is a routine compliance block, not an
// error: blocked pairs are expected output and are counted separately in
// batch statistics.
type BlockReason string

const (
	ReasonApproved         BlockReason = "approved"
	ReasonValidationFailed BlockReason = "validation_failed"
	ReasonOptedOut         BlockReason = "opted_out"
	ReasonDeadlinePassed   BlockReason = "deadline_passed"
	ReasonNoTopicMatch     BlockReason = "no_topic_match"
)

// Decision is the outcome of one eligibility evaluation for a
// (recipient, event) pair. It is always embedded into a ResultRecord,
// never persisted on its own.
type Decision struct {
	ShouldSend bool
	Reason     BlockReason
	Warnings   []string
}

// Status is the terminal state of a processed pair.
type Status string

const (
	StatusBlocked   Status = "blocked"
	StatusGenerated Status = "generated"
)

// Tone is the writing register selected from the recipient's engagement
// score.
type Tone string

const (
	ToneEnthusiastic Tone = "enthusiastic"
	ToneProfessional Tone = "professional"
	ToneGentle       Tone = "gentle"
)

// EmailContent is a generated subject/body pair.
type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ResultRecord is the unit of output per (recipient, event, day) triple.
// Invariants: Email is non-nil if and only if Status == StatusGenerated,
// and Reason is set only on blocked records. Records are immutable once
// constructed by the pair processor.
type ResultRecord struct {
	RecipientID  string        `json:"recipient_id"`
	EventID      string        `json:"event_id"`
	Day          Day           `json:"day"`
	Status       Status        `json:"status"`
	Reason       BlockReason   `json:"reason,omitempty"`
	GeneratedAt  *time.Time    `json:"generated_at,omitempty"`
	TopicOverlap []string      `json:"topic_overlap"`
	Tone         Tone          `json:"tone,omitempty"`
	Email        *EmailContent `json:"email"`
	Warnings     []string      `json:"warnings"`
}

// BatchStatistics aggregates outcomes across a batch run. Mutated
// incrementally by the orchestrator (its sole owner) and read-only once
// the run finishes.
type BatchStatistics struct {
	Total     int                 `json:"total"`
	Generated int                 `json:"generated"`
	Blocked   int                 `json:"blocked"`
	ByReason  map[BlockReason]int `json:"by_reason,omitempty"`
}

// CountBlock records a blocked pair under its reason.
func (s *BatchStatistics) CountBlock(reason BlockReason) {
	s.Blocked++
	if s.ByReason == nil {
		s.ByReason = make(map[BlockReason]int)
	}
	s.ByReason[reason]++
}

// DayCollection is the persisted artifact for one sequence day: run
// statistics plus the ordered result records for every pair processed.
type DayCollection struct {
	Day         Day             `json:"day"`
	GeneratedAt time.Time       `json:"generated_at"`
	Statistics  BatchStatistics `json:"statistics"`
	Emails      []ResultRecord  `json:"emails"`
}

// OutboundEmail is the delivery-layer view of a generated record: just
// what the transport needs to hand the message to a mailbox provider.
type OutboundEmail struct {
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	RecipientID    string `json:"recipient_id"`
	EventID        string `json:"event_id"`
	Day            Day    `json:"day"`
}

// DeliveryStats counts per-batch delivery outcomes.
type DeliveryStats struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
