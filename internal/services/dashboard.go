package services

import (
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"
	"hamanets/internal/stats"
)

const (
	dashboardRecent    = 5
	dashboardBudgets   = 3
	dashboardReminders = 2
)

// LedgerView is the read side of the ledger the dashboard needs.
type LedgerView interface {
	Transactions() []core.Transaction
	Budgets() []core.Budget
	Reminders() []core.Reminder
}

// Dashboard is the home screen bundle.
type Dashboard struct {
	Month     core.Summary        `json:"month"`
	Recent    []core.Transaction  `json:"recent"`
	Budgets   []core.BudgetStatus `json:"budgets"`
	Reminders []DueReminder       `json:"reminders"`
	Forecast  core.Money          `json:"forecast"`
}

// BuildDashboard composes the current month summary, the five newest
// transactions, the first three budgets with fresh spending, the first two
// active reminders and the next-month forecast.
func BuildDashboard(v LedgerView, now time.Time, policy stats.BudgetPolicy) Dashboard {
	txns := v.Transactions()

	active := Active(v.Reminders())
	if len(active) > dashboardReminders {
		active = active[:dashboardReminders]
	}
	reminders := make([]DueReminder, 0, len(active))
	today := period.StartOfDay(now)
	for _, r := range active {
		due := NextDue(r, now)
		reminders = append(reminders, DueReminder{Reminder: r, NextDue: due, Overdue: due.Before(today)})
	}

	return Dashboard{
		Month:     stats.Month(txns, now, 0),
		Recent:    stats.Recent(txns, dashboardRecent),
		Budgets:   stats.Top(stats.WithSpent(v.Budgets(), txns, now, policy), dashboardBudgets),
		Reminders: reminders,
		Forecast:  stats.PredictNextMonth(txns, now),
	}
}
