// Package clock provides the time source used by the validation streak
// rules, injectable so tests can pin the calendar day.
package clock

import "time"

const dateKeyLayout = "2006-01-02"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// DateKey reduces a timestamp to its local calendar day (YYYY-MM-DD).
// Streak comparisons work on these keys, not on raw instants.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// Yesterday returns the date key of the calendar day before t.
func Yesterday(t time.Time) string {
	return DateKey(t.AddDate(0, 0, -1))
}
