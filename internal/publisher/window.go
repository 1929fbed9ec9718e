package publisher

import (
	"fmt"
	"time"
)

// Window is a daily time-of-day range in a fixed UTC offset. Both ends are
// inclusive. A window whose end is before its start wraps past midnight.
type Window struct {
	Start    time.Duration // offset from midnight
	End      time.Duration
	Location *time.Location
}

// ParseWindow builds a window from "HH:MM" bounds and a UTC offset in hours.
func ParseWindow(start, end string, utcOffsetHours float64) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("window start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("window end: %w", err)
	}
	offset := int(utcOffsetHours * 3600)
	return Window{
		Start:    s,
		End:      e,
		Location: time.FixedZone(fmt.Sprintf("UTC%+g", utcOffsetHours), offset),
	}, nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	sinceMidnight := local.Sub(time.Date(y, m, d, 0, 0, 0, 0, loc))

	if w.Start <= w.End {
		return sinceMidnight >= w.Start && sinceMidnight <= w.End
	}
	return sinceMidnight >= w.Start || sinceMidnight <= w.End
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
