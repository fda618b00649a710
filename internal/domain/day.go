package domain

import "fmt"

// Day identifies a stage in the fixed 7-day outreach sequence. The set is
// closed: new stages require a new template configuration, so unknown
// values are rejected at the CLI boundary rather than silently accepted.
type Day string

const (
	DayConfirmation   Day = "0"  // registration confirmation
	DayIndoctrination Day = "1"  // curiosity / authority
	DaySocialProof    Day = "3"  // credibility
	DayObjections     Day = "5"  // objection handling
	DayFinalPush      Day = "6"  // urgency, day before
	DayMorningOf      Day = "7a" // event-day morning reminder
	DayFinalWarning   Day = "7b" // final-hour warning
)

// AllDays returns every sequence day in send order.
func AllDays() []Day {
	return []Day{
		DayConfirmation,
		DayIndoctrination,
		DaySocialProof,
		DayObjections,
		DayFinalPush,
		DayMorningOf,
		DayFinalWarning,
	}
}

// ParseDay validates a day string from user input.
func ParseDay(s string) (Day, error) {
	for _, d := range AllDays() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown sequence day %q (valid: 0, 1, 3, 5, 6, 7a, 7b)", s)
}
