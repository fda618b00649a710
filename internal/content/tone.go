package content

import "github.com/fundingforward/outreach/internal/domain"

// Engagement thresholds for tone selection.
const (
	highEngagement = 0.7
	lowEngagement  = 0.5

	// DefaultEngagement is assumed when a recipient record carries no
	// engagement score.
	DefaultEngagement = 0.5
)

// ToneFromEngagement selects the writing register for a recipient.
// A nil score falls back to DefaultEngagement.
func ToneFromEngagement(score *float64) domain.Tone {
	s := DefaultEngagement
	if score != nil {
		s = *score
	}
	switch {
	case s >= highEngagement:
		return domain.ToneEnthusiastic
	case s >= lowEngagement:
		return domain.ToneProfessional
	default:
		return domain.ToneGentle
	}
}
