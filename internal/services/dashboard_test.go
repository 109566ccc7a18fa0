package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamanets/internal/core"
	"hamanets/internal/stats"
)

type staticView struct {
	txns      []core.Transaction
	budgets   []core.Budget
	reminders []core.Reminder
}

func (v staticView) Transactions() []core.Transaction { return v.txns }
func (v staticView) Budgets() []core.Budget           { return v.budgets }
func (v staticView) Reminders() []core.Reminder       { return v.reminders }

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)

	var txns []core.Transaction
	for i := 0; i < 7; i++ {
		txns = append(txns, core.Transaction{
			ID: fmt.Sprintf("t%d", i), Type: core.Expense, Amount: core.MoneyFromInt(100),
			CategoryID: "food", Date: now.AddDate(0, 0, -i),
		})
	}
	// 300 in each of the three previous months
	for m := 1; m <= 3; m++ {
		txns = append(txns, core.Transaction{
			ID: fmt.Sprintf("p%d", m), Type: core.Expense, Amount: core.MoneyFromInt(300),
			CategoryID: "housing", Date: time.Date(2025, time.Month(6-m), 10, 12, 0, 0, 0, time.UTC),
		})
	}

	v := staticView{
		txns: txns,
		budgets: []core.Budget{
			{ID: "b1", CategoryID: "food", Amount: core.MoneyFromInt(500), Period: core.PeriodMonthly},
			{ID: "b2", CategoryID: "housing", Amount: core.MoneyFromInt(1000), Period: core.PeriodMonthly},
			{ID: "b3", CategoryID: "transport", Amount: core.MoneyFromInt(200), Period: core.PeriodMonthly},
			{ID: "b4", CategoryID: "health", Amount: core.MoneyFromInt(200), Period: core.PeriodMonthly},
		},
		reminders: []core.Reminder{
			{ID: "r1", DueDate: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), IsRecurring: true, RecurringInterval: core.Monthly, IsActive: true},
			{ID: "r2", DueDate: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), IsActive: false},
			{ID: "r3", DueDate: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), IsActive: true},
			{ID: "r4", DueDate: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC), IsActive: true},
		},
	}

	d := BuildDashboard(v, now, stats.CurrentMonth)

	require.Len(t, d.Recent, 5)
	assert.Equal(t, "t0", d.Recent[0].ID)

	assert.Equal(t, "June 2025", d.Month.Label)
	assert.True(t, d.Month.TotalExpenses.Equal(core.MoneyFromInt(700)), "month expenses %s", d.Month.TotalExpenses)

	require.Len(t, d.Budgets, 3)
	assert.Equal(t, "b1", d.Budgets[0].ID)
	assert.True(t, d.Budgets[0].IsOver)
	assert.True(t, d.Budgets[1].Spent.IsZero())

	require.Len(t, d.Reminders, 2)
	assert.Equal(t, "r1", d.Reminders[0].ID)
	assert.True(t, d.Reminders[0].NextDue.Equal(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "r3", d.Reminders[1].ID)
	assert.True(t, d.Reminders[1].Overdue)

	assert.True(t, d.Forecast.Equal(core.MoneyFromInt(300)), "forecast %s", d.Forecast)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(staticView{}, time.Now(), stats.PeriodAware)
	assert.Empty(t, d.Recent)
	assert.Empty(t, d.Budgets)
	assert.Empty(t, d.Reminders)
	assert.True(t, d.Forecast.IsZero())
}
