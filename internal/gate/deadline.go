package gate

import (
	"fmt"
	"strings"
	"time"
)

// deadlineLayouts are tried in order. Layouts without a zone are
// interpreted in the engine's reference location.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

// dateOnlyLayouts carry no time component. A deadline given as a bare
// date means applications close at the end of that day, so these
// normalize to 23:59:59 in the reference location.
var dateOnlyLayouts = map[string]bool{
	"2006-01-02":      true,
	"January 2, 2006": true,
	"Jan 2, 2006":     true,
	"2 January 2006":  true,
	"02 Jan 2006":     true,
}

// ParseDeadline parses an application deadline string. Zone-naive values
// are localized to loc; date-only values roll forward to end of day.
func ParseDeadline(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}
	for _, layout := range deadlineLayouts {
		var t time.Time
		var err error
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err != nil {
			continue
		}
		if dateOnlyLayouts[layout] {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline format: %q", raw)
}
