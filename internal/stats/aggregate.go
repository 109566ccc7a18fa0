// Package stats turns a transaction ledger into totals, per-category
// breakdowns, series, budget consumption and forecasts. Every function is
// a pure read of its inputs.
package stats

import (
	"sort"
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"
)

const monthLabelLayout = "January 2006"

// Aggregate sums the transactions dated inside w.
//
// ByCategory holds expenses only, sorted by amount descending; categories
// with equal totals keep the order in which they were first seen.
func Aggregate(txns []core.Transaction, w period.Window) core.Summary {
	var (
		income, expenses core.Money
		count            int
		catOrder         []string
		catTotals        = make(map[string]core.Money)
		curOrder         []core.Currency
		curTotals        = make(map[core.Currency]*core.CurrencyTotals)
	)
	for _, tx := range txns {
		if !w.Contains(tx.Date) {
			continue
		}
		count++
		ct, ok := curTotals[tx.Currency]
		if !ok {
			ct = &core.CurrencyTotals{Currency: tx.Currency}
			curTotals[tx.Currency] = ct
			curOrder = append(curOrder, tx.Currency)
		}
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
			ct.Income = ct.Income.Add(tx.Amount)
		case core.Expense:
			expenses = expenses.Add(tx.Amount)
			ct.Expenses = ct.Expenses.Add(tx.Amount)
			if _, seen := catTotals[tx.CategoryID]; !seen {
				catOrder = append(catOrder, tx.CategoryID)
			}
			catTotals[tx.CategoryID] = catTotals[tx.CategoryID].Add(tx.Amount)
		}
	}

	byCategory := make([]core.CategoryAmount, 0, len(catOrder))
	for _, id := range catOrder {
		byCategory = append(byCategory, core.CategoryAmount{CategoryID: id, Amount: catTotals[id]})
	}
	sort.SliceStable(byCategory, func(i, j int) bool {
		return byCategory[i].Amount.GreaterThan(byCategory[j].Amount)
	})

	byCurrency := make([]core.CurrencyTotals, 0, len(curOrder))
	for _, c := range curOrder {
		byCurrency = append(byCurrency, *curTotals[c])
	}

	return core.Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
		ByCategory:    byCategory,
		ByCurrency:    byCurrency,
		Count:         count,
	}
}

// Month aggregates the calendar month offset months before now.
func Month(txns []core.Transaction, now time.Time, offset int) core.Summary {
	w := period.Month(now, offset)
	s := Aggregate(txns, w)
	s.Label = w.Start.Format(monthLabelLayout)
	return s
}

// InWindow returns the transactions dated inside w, preserving order.
func InWindow(txns []core.Transaction, w period.Window) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range txns {
		if w.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
