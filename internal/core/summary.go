package core

// CategoryAmount is an expense total for one category id.
type CategoryAmount struct {
	CategoryID string `json:"categoryId"`
	Amount     Money  `json:"amount"`
}

// CurrencyTotals splits a window's totals for one currency code.
type CurrencyTotals struct {
	Currency Currency `json:"currency"`
	Income   Money    `json:"income"`
	Expenses Money    `json:"expenses"`
}

// Summary is the aggregation of a transaction set over a window.
type Summary struct {
	Label         string           `json:"label,omitempty"`
	TotalIncome   Money            `json:"totalIncome"`
	TotalExpenses Money            `json:"totalExpenses"`
	Balance       Money            `json:"balance"`
	ByCategory    []CategoryAmount `json:"byCategory"`
	ByCurrency    []CurrencyTotals `json:"byCurrency"`
	Count         int              `json:"count"`
}

// SeriesPoint is one bucket of a weekly or monthly series.
type SeriesPoint struct {
	Label    string `json:"label"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
}

// BudgetStatus is a budget joined with freshly computed spending.
type BudgetStatus struct {
	Budget
	Remaining Money   `json:"remaining"`
	Ratio     float64 `json:"ratio"`
	IsOver    bool    `json:"isOver"`
	IsNear    bool    `json:"isNear"`
}

// DayGroup collects the transactions of one calendar day.
type DayGroup struct {
	Date         string        `json:"date"`
	Net          Money         `json:"net"`
	Transactions []Transaction `json:"transactions"`
}
