// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for projecting recurring
// reminders. Each interval (daily, weekly, monthly, yearly) has its own
// strategy for finding the next occurrence; the stored due date is never
// advanced.
package services

import (
	"fmt"
	"sort"
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"
)

// DuenessStrategy projects the occurrences of a recurring schedule.
type DuenessStrategy interface {
	// Next returns the first occurrence of the schedule anchored at anchor
	// that is not before from. An anchor at or after from is returned as is.
	Next(anchor, from time.Time) time.Time
}

// DailyStrategy repeats every calendar day at the anchor's clock time.
type DailyStrategy struct{}

func (DailyStrategy) Next(anchor, from time.Time) time.Time { return stepDays(anchor, from, 1) }

// WeeklyStrategy repeats every seven calendar days.
type WeeklyStrategy struct{}

func (WeeklyStrategy) Next(anchor, from time.Time) time.Time { return stepDays(anchor, from, 7) }

// MonthlyStrategy repeats on the anchor's day of month, clamped to the
// last day of shorter months (Jan 31 -> Feb 28 -> Mar 31).
type MonthlyStrategy struct{}

func (MonthlyStrategy) Next(anchor, from time.Time) time.Time {
	if !anchor.Before(from) {
		return anchor
	}
	n := (from.Year()-anchor.Year())*12 + int(from.Month()) - int(anchor.Month()) - 1
	for n = max(n, 0); ; n++ {
		if t := addMonthsClamped(anchor, n); !t.Before(from) {
			return t
		}
	}
}

// YearlyStrategy repeats on the anchor's month and day; Feb 29 falls on
// Feb 28 in common years.
type YearlyStrategy struct{}

func (YearlyStrategy) Next(anchor, from time.Time) time.Time {
	if !anchor.Before(from) {
		return anchor
	}
	n := from.Year() - anchor.Year() - 1
	for n = max(n, 0); ; n++ {
		if t := addMonthsClamped(anchor, 12*n); !t.Before(from) {
			return t
		}
	}
}

func stepDays(anchor, from time.Time, step int) time.Time {
	if !anchor.Before(from) {
		return anchor
	}
	// whole days elapsed, rounded down to the step
	days := int(from.Sub(anchor).Hours()/24) / step * step
	t := anchor.AddDate(0, 0, days)
	for t.Before(from) {
		t = t.AddDate(0, 0, step)
	}
	return t
}

// addMonthsClamped moves t n months forward keeping its day of month when
// the target month has it, else the target month's last day.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// duenessStrategies maps recurring intervals to their strategies.
var duenessStrategies = map[core.Interval]DuenessStrategy{
	core.Daily:   DailyStrategy{},
	core.Weekly:  WeeklyStrategy{},
	core.Monthly: MonthlyStrategy{},
	core.Yearly:  YearlyStrategy{},
}

// GetDuenessStrategy returns the strategy for an interval.
func GetDuenessStrategy(interval core.Interval) (DuenessStrategy, error) {
	s, ok := duenessStrategies[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidInterval, interval)
	}
	return s, nil
}

// DueReminder is a reminder with its projected due date.
type DueReminder struct {
	core.Reminder
	NextDue time.Time `json:"nextDue"`
	Overdue bool      `json:"overdue"`
}

// NextDue projects when r is next due, counting from the start of now's
// day. One-off reminders and recurring ones with an unknown interval
// report their stored date.
func NextDue(r core.Reminder, now time.Time) time.Time {
	if !r.IsRecurring {
		return r.DueDate
	}
	s, err := GetDuenessStrategy(r.RecurringInterval)
	if err != nil {
		return r.DueDate
	}
	return s.Next(r.DueDate, period.StartOfDay(now))
}

// Active returns the active reminders in their stored order.
func Active(reminders []core.Reminder) []core.Reminder {
	out := make([]core.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

// Upcoming lists active reminders due from the start of today through the
// end of the day days from now, soonest first. Overdue one-off reminders
// are included and flagged.
func Upcoming(reminders []core.Reminder, now time.Time, days int) []DueReminder {
	if days < 0 {
		days = 0
	}
	today := period.StartOfDay(now)
	horizon := period.EndOfDay(now.AddDate(0, 0, days))

	out := make([]DueReminder, 0)
	for _, r := range Active(reminders) {
		due := NextDue(r, now)
		if due.After(horizon) {
			continue
		}
		out = append(out, DueReminder{Reminder: r, NextDue: due, Overdue: due.Before(today)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NextDue.Before(out[j].NextDue) })
	return out
}
