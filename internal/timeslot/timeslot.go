// Package timeslot extracts clock-time mentions from free text.
package timeslot

import (
	"regexp"
	"strings"
)

// pattern matches an hour, an optional ":mm" or ".mm" minute part and an
// optional meridiem, optionally preceded by a filler word.
var pattern = regexp.MustCompile(`(?i)\b(?:will|at|in|around|@)?\s?(\d{1,2})([:.]\d{2})?\s?(am|pm)?\b`)

// Extract returns the first time mention in text as a canonical label such as
// "9:45 AM" or "14:00". Values are not range-checked: "25:99" is returned as is.
func Extract(text string) (string, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	hour, minute, period := m[1], m[2], strings.ToUpper(m[3])
	if minute == "" {
		minute = ":00"
	}
	return strings.TrimSpace(hour + minute + " " + period), true
}
