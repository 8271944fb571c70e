package ledger

import "time"

// WeekStart returns Monday 00:00 of the ISO week containing t, in t's
// location. On a Sunday that is six days earlier.
func WeekStart(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, t.Location())
}

// InWeek reports whether day falls on or after the start of now's week.
func InWeek(day, now time.Time) bool {
	return !day.Before(WeekStart(now))
}
