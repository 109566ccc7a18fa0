package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var day = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: "t1", Type: Expense, Amount: MoneyFromInt(10), CategoryID: "food", Date: day}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = MoneyFromInt(-1) }, ErrInvalidAmount},
		{"no category", func(tx *Transaction) { tx.CategoryID = " " }, ErrEmptyCategory},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mod(&tx)
			err := tx.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput family, got %v", err)
			}
		})
	}
}

func TestBudgetAndReminderValidate(t *testing.T) {
	if err := (Budget{CategoryID: "food", Amount: MoneyFromInt(1), Period: PeriodWeekly}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{CategoryID: "food", Amount: Money{}, Period: PeriodMonthly}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := (Budget{CategoryID: "food", Amount: MoneyFromInt(1), Period: "daily"}).Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}

	r := Reminder{Title: "Rent", Amount: MoneyFromInt(1), CategoryID: "housing", DueDate: day, IsRecurring: true, RecurringInterval: Monthly}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	r.RecurringInterval = ""
	if err := r.Validate(); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected invalid interval, got %v", err)
	}
}

func TestCategoryAccepts(t *testing.T) {
	cases := []struct {
		ct   CategoryType
		tt   TransactionType
		want bool
	}{
		{CategoryExpense, Expense, true},
		{CategoryExpense, Income, false},
		{CategoryIncome, Income, true},
		{CategoryIncome, Expense, false},
		{CategoryBoth, Income, true},
		{CategoryBoth, Expense, true},
	}
	for _, tc := range cases {
		if got := (Category{Type: tc.ct}).Accepts(tc.tt); got != tc.want {
			t.Errorf("%s accepts %s: got %v", tc.ct, tc.tt, got)
		}
	}
}

func TestSettingsApply(t *testing.T) {
	eur := EUR
	dark := ThemeDark
	got := DefaultSettings.Apply(SettingsPatch{DefaultCurrency: &eur, Theme: &dark})
	if got.DefaultCurrency != EUR || got.Theme != ThemeDark {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Language != "uk" || got.PinEnabled {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestSigned(t *testing.T) {
	tx := Transaction{Type: Expense, Amount: MoneyFromInt(5)}
	if !tx.Signed().Equal(MoneyFromInt(-5)) {
		t.Fatalf("expense should be negative, got %s", tx.Signed())
	}
	tx.Type = Income
	if !tx.Signed().Equal(MoneyFromInt(5)) {
		t.Fatalf("income should be positive, got %s", tx.Signed())
	}
}
