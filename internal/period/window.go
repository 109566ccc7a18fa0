// Package period resolves the calendar-aligned windows every aggregation
// is scoped to. All computations happen in the location of the supplied
// "now" value.
package period

import "time"

// Window is a closed time range: both Start and End are included.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the inclusive bounds.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Clock is the injectable source of "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports calendar-date equality in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Month returns the calendar month that lies offset months before the
// month containing now. Negative offsets are clamped to 0.
func Month(now time.Time, offset int) Window {
	if offset < 0 {
		offset = 0
	}
	y, m, _ := now.Date()
	// Day 1 keeps AddDate from normalizing 31 March into 3 March, etc.
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -offset, 0)
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// LastDays returns n single-day windows ending with today, oldest first.
func LastDays(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	out := make([]Window, 0, n)
	today := StartOfDay(now)
	for i := n - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		out = append(out, Window{Start: d, End: EndOfDay(d)})
	}
	return out
}

// LastMonths returns n back-to-back month windows ending with the current
// month, oldest first.
func LastMonths(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, Month(now, i))
	}
	return out
}

// Week is the rolling seven-day window ending at the end of today.
func Week(now time.Time) Window {
	today := StartOfDay(now)
	return Window{Start: today.AddDate(0, 0, -6), End: EndOfDay(now)}
}
