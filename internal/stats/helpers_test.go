package stats

import (
	"fmt"
	"testing"
	"time"

	"hamanets/internal/core"

	"github.com/stretchr/testify/assert"
)

// now is mid-month so offsets land on whole months.
var now = time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)

func tx(id string, typ core.TransactionType, amount int64, cat string, at time.Time) core.Transaction {
	return core.Transaction{
		ID:         id,
		Type:       typ,
		Amount:     core.MoneyFromInt(amount),
		Currency:   core.UAH,
		CategoryID: cat,
		Date:       at,
	}
}

func onDay(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 10, 0, 0, 0, time.UTC)
}

func assertMoney(t *testing.T, want int64, got core.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, core.MoneyFromInt(want).Equal(got), fmt.Sprintf("want %d, got %s %v", want, got, msgAndArgs))
}
