package schema

import (
	"fmt"
	"time"
)

// Window is a calendar-aware batch width. Months advance by calendar month
// with time.AddDate normalization.
type Window struct {
	Months int
	Days   int
}

// End returns the exclusive end of a window opened at start.
func (w Window) End(start time.Time) time.Time {
	return start.AddDate(0, w.Months, w.Days)
}

// Contains reports whether t lies in [start, start+w).
func (w Window) Contains(start, t time.Time) bool {
	return !t.Before(start) && t.Before(w.End(start))
}

// IsZero reports whether the window has no width.
func (w Window) IsZero() bool {
	return w.Months == 0 && w.Days == 0
}

func (w Window) String() string {
	switch {
	case w.Months > 0 && w.Days > 0:
		return fmt.Sprintf("%d months %d days", w.Months, w.Days)
	case w.Months > 0:
		return fmt.Sprintf("%d months", w.Months)
	default:
		return fmt.Sprintf("%d days", w.Days)
	}
}
