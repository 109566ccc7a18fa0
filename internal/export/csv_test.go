package export

import (
	"encoding/csv"
	"regexp"
	"strings"
	"testing"
	"time"

	"hamanets/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categories = []core.Category{
	{ID: "food", Name: "Food", Type: core.CategoryExpense},
	{ID: "salary", Name: "Salary", Type: core.CategoryIncome},
}

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Type: core.Expense, Amount: core.MoneyFromCents(12050), Currency: core.UAH, CategoryID: "food",
			Description: "Groceries", Date: time.Date(2025, 3, 7, 18, 0, 0, 0, time.UTC)},
		{ID: "2", Type: core.Income, Amount: core.MoneyFromInt(45000), Currency: core.UAH, CategoryID: "salary",
			Description: "March", Date: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)},
		{ID: "3", Type: core.Expense, Amount: core.MoneyFromFloat(9.999), Currency: core.EUR, CategoryID: "deleted",
			Description: "Old", Date: time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)},
	}
}

func TestToCSV(t *testing.T) {
	got := ToCSV(sample(), categories)
	want := strings.Join([]string{
		"Date,Type,Category,Description,Amount,Currency",
		"07.03.2025,Expense,Food,Groceries,120.50,UAH",
		"05.03.2025,Income,Salary,March,45000.00,UAH",
		"31.12.2024,Expense,deleted,Old,10.00,EUR",
	}, "\n")
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestToCSVLineCountAndAmounts(t *testing.T) {
	txns := sample()
	lines := strings.Split(ToCSV(txns, categories), "\n")
	require.Len(t, lines, len(txns)+1)

	twoDecimals := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 6)
		assert.Regexp(t, twoDecimals, fields[4])
	}
}

func TestToCSVEmpty(t *testing.T) {
	assert.Equal(t, "Date,Type,Category,Description,Amount,Currency", ToCSV(nil, nil))
}

func TestToCSVUkrainianLabels(t *testing.T) {
	got := ToCSV(sample()[1:2], categories, WithLabels(UkrainianLabels))
	assert.Equal(t, "Дата,Тип,Категорія,Опис,Сума,Валюта\n05.03.2025,Дохід,Salary,March,45000.00,UAH", got)
}

func TestToCSVUnquotedCommaShiftsColumns(t *testing.T) {
	txns := sample()[:1]
	txns[0].Description = "bread, milk"
	line := strings.Split(ToCSV(txns, categories), "\n")[1]
	assert.Len(t, strings.Split(line, ","), 7)
}

func TestToCSVWithQuoting(t *testing.T) {
	txns := sample()[:1]
	txns[0].Description = "bread, \"milk\"\nand eggs"
	out := ToCSV(txns, categories, WithQuoting())

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "bread, \"milk\"\nand eggs", records[1][3])
	assert.Equal(t, "120.50", records[1][4])
}

func TestLabelsFor(t *testing.T) {
	tests := []struct {
		lang string
		want Labels
	}{
		{"uk", UkrainianLabels},
		{"uk-UA", UkrainianLabels},
		{"en", EnglishLabels},
		{"", EnglishLabels},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelsFor(tt.lang), tt.lang)
	}
}

func TestToCSVWithLocationCrossesDay(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	txns := []core.Transaction{{
		ID: "late", Type: core.Expense, Amount: core.MoneyFromInt(5), Currency: core.UAH, CategoryID: "food",
		Date: time.Date(2025, 2, 28, 22, 30, 0, 0, time.UTC),
	}}

	utc := strings.Split(ToCSV(txns, categories), "\n")[1]
	assert.True(t, strings.HasPrefix(utc, "28.02.2025,"), utc)

	local := strings.Split(ToCSV(txns, categories, WithLocation(kyiv)), "\n")[1]
	assert.Equal(t, "01.03.2025,Expense,Food,,5.00,UAH", local)

	rows := Rows(txns, categories, WithLocation(kyiv), WithQuoting())
	require.Len(t, rows, 2)
	assert.Equal(t, "01.03.2025", rows[1][0])
}
