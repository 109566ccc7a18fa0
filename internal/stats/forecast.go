package stats

import (
	"time"

	"hamanets/internal/core"
)

// forecastMonths is how many completed months the forecast averages.
const forecastMonths = 3

// PredictNextMonth averages the total expenses of the three months before
// the current one. The in-progress month is excluded. There is no
// weighting, trend or seasonality.
func PredictNextMonth(txns []core.Transaction, now time.Time) core.Money {
	var total core.Money
	for i := 1; i <= forecastMonths; i++ {
		total = total.Add(Month(txns, now, i).TotalExpenses)
	}
	return total.DivInt(forecastMonths)
}
