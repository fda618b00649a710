package content

import "github.com/fundingforward/outreach/internal/domain"

// DayPlan describes the strategy for one email in the seven-day sequence.
// The plan drives both the AI prompt and the fallback subject line.
type DayPlan struct {
	Type           string
	Purpose        string
	Principle      string
	SubjectFormula string
	Structure      []string
}

var dayPlans = map[domain.Day]DayPlan{
	domain.DayConfirmation: {
		Type:           "Registration Confirmation",
		Purpose:        "Set expectations and build excitement",
		Principle:      "Confirm enrollment, preview value, build anticipation",
		SubjectFormula: "You're in! Here's what to expect...",
		Structure: []string{
			"Warm welcome with recipient's name",
			"Confirm grant event details (title, date, organizer)",
			"Preview what they'll learn/gain",
			"Set expectation for next email",
			"P.S. with deadline or bonus",
		},
	},
	domain.DayIndoctrination: {
		Type:           "Indoctrination",
		Purpose:        "Create curiosity and establish authority",
		Principle:      "Introduce the #1 mistake/problem they face that the event solves",
		SubjectFormula: "The #1 mistake that kills 97% of [topic] applications",
		Structure: []string{
			"Open with empathy about their challenges",
			"Present the common mistake (curiosity gap)",
			"Tease the solution (revealed at event)",
			"Soft reminder of event details",
			"Clear CTA to mark calendar",
		},
	},
	domain.DaySocialProof: {
		Type:           "Social Proof",
		Purpose:        "Build credibility through results",
		Principle:      "Show proof of organizer's track record or similar success stories",
		SubjectFormula: "Proof: Real organizations getting real grant money",
		Structure: []string{
			"Lead with a success story or credibility marker",
			"Specific proof elements (if in data: amounts, organizations helped)",
			"You could be next positioning",
			"Event reminder with key details",
			"CTA to confirm attendance",
		},
	},
	domain.DayObjections: {
		Type:           "Objection Handling",
		Purpose:        "Address skepticism and common fears",
		Principle:      "Acknowledge doubts, then dismantle them with empathy and logic",
		SubjectFormula: "I get it... you're skeptical (read this)",
		Structure: []string{
			"Acknowledge their likely doubts (I get it...)",
			"Debunk common myths about grants",
			"Risk reversal (what they lose by NOT attending)",
			"Deadline awareness",
			"Reassuring CTA",
		},
	},
	domain.DayFinalPush: {
		Type:           "Final Push",
		Purpose:        "Create urgency before event day",
		Principle:      "Day-before reminder using time scarcity and FOMO",
		SubjectFormula: "Tomorrow: Your [topic] funding breakthrough",
		Structure: []string{
			"Time-sensitive opening (Tomorrow...)",
			"What to prepare/expect tomorrow",
			"Final objection handling",
			"Strong CTA to add to calendar/set reminder",
			"P.S. with final deadline reminder",
		},
	},
	domain.DayMorningOf: {
		Type:           "Morning Reminder",
		Purpose:        "Build excitement and prevent no-shows",
		Principle:      "Event day motivation - high energy, top-of-mind awareness",
		SubjectFormula: "Going LIVE in 6 hours - [Event Title]",
		Structure: []string{
			"High energy opening with countdown",
			"Exact timing and access details",
			"What to have ready/prepare",
			"Last-minute value reminder",
			"Direct access link",
		},
	},
	domain.DayFinalWarning: {
		Type:           "Final Warning",
		Purpose:        "Last chance urgency",
		Principle:      "Final hour - ultra-brief, direct, urgent FOMO trigger",
		SubjectFormula: "Starting in 60 minutes (join now)",
		Structure: []string{
			"ULTRA short (3-4 lines max)",
			"Direct link/access information",
			"Countdown timer language (Starting in...)",
			"One-line FOMO trigger",
			"No lengthy explanation",
		},
	},
}

// PlanFor returns the sequence plan for a day. The second return is false
// for days outside the seven-day sequence.
func PlanFor(day domain.Day) (DayPlan, bool) {
	plan, ok := dayPlans[day]
	return plan, ok
}
