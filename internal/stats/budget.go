package stats

import (
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"
)

// nearThreshold is the spent/amount ratio above which a budget is "near".
const nearThreshold = 0.8

// BudgetPolicy picks the window a budget's spending is measured over.
type BudgetPolicy int

const (
	// CurrentMonth measures every budget against the current calendar
	// month, whatever its period says.
	CurrentMonth BudgetPolicy = iota
	// PeriodAware measures weekly budgets against the rolling seven days
	// ending today and monthly budgets against the current month.
	PeriodAware
)

func (p BudgetPolicy) window(b core.Budget, now time.Time) period.Window {
	if p == PeriodAware && b.Period == core.PeriodWeekly {
		return period.Week(now)
	}
	return period.Month(now, 0)
}

// WithSpent joins budgets with their spending. The input slice is not
// modified; each status carries its own copy of the budget.
func WithSpent(budgets []core.Budget, txns []core.Transaction, now time.Time, policy BudgetPolicy) []core.BudgetStatus {
	out := make([]core.BudgetStatus, 0, len(budgets))
	windowed := make(map[period.Window][]core.Transaction, 2)
	for _, b := range budgets {
		w := policy.window(b, now)
		inside, ok := windowed[w]
		if !ok {
			inside = InWindow(txns, w)
			windowed[w] = inside
		}
		var spent core.Money
		for _, tx := range inside {
			if tx.Type == core.Expense && tx.CategoryID == b.CategoryID {
				spent = spent.Add(tx.Amount)
			}
		}
		b.Spent = spent
		ratio := spent.Ratio(b.Amount)
		out = append(out, core.BudgetStatus{
			Budget:    b,
			Remaining: b.Amount.Sub(spent),
			Ratio:     ratio,
			IsOver:    spent.GreaterThan(b.Amount),
			IsNear:    ratio > nearThreshold,
		})
	}
	return out
}

// Top returns at most n statuses from the front of the list.
func Top(statuses []core.BudgetStatus, n int) []core.BudgetStatus {
	if n < 0 {
		n = 0
	}
	if len(statuses) > n {
		statuses = statuses[:n]
	}
	return append([]core.BudgetStatus(nil), statuses...)
}
