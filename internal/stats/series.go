package stats

import (
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"
)

const (
	weekDays         = 7
	trendMonths      = 6
	dayLabelLayout   = "Mon"
	shortMonthLayout = "Jan"
)

// Weekly returns per-day totals for the seven calendar days ending today,
// oldest first. Days are matched by calendar date in now's location.
func Weekly(txns []core.Transaction, now time.Time) []core.SeriesPoint {
	loc := now.Location()
	days := period.LastDays(now, weekDays)
	out := make([]core.SeriesPoint, 0, len(days))
	for _, d := range days {
		p := core.SeriesPoint{Label: d.Start.Format(dayLabelLayout)}
		for _, tx := range txns {
			if !period.SameDay(tx.Date, d.Start, loc) {
				continue
			}
			switch tx.Type {
			case core.Income:
				p.Income = p.Income.Add(tx.Amount)
			case core.Expense:
				p.Expenses = p.Expenses.Add(tx.Amount)
			}
		}
		out = append(out, p)
	}
	return out
}

// SixMonths returns monthly totals for the current month and the five
// before it, oldest first. Entry i equals Month at offset 5-i.
func SixMonths(txns []core.Transaction, now time.Time) []core.SeriesPoint {
	return Months(txns, now, trendMonths)
}

// Months is SixMonths for an arbitrary number of months.
func Months(txns []core.Transaction, now time.Time, n int) []core.SeriesPoint {
	if n <= 0 {
		return []core.SeriesPoint{}
	}
	out := make([]core.SeriesPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		w := period.Month(now, i)
		s := Aggregate(txns, w)
		out = append(out, core.SeriesPoint{
			Label:    w.Start.Format(shortMonthLayout),
			Income:   s.TotalIncome,
			Expenses: s.TotalExpenses,
		})
	}
	return out
}
