package ledger

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"

	"hamanets/internal/core"
	"hamanets/internal/period"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	return NewDefault(
		WithClock(period.FixedClock(testNow)),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func expense(amount int64, cat string) core.Transaction {
	return core.Transaction{Type: core.Expense, Amount: core.MoneyFromInt(amount), CategoryID: cat, Date: testNow}
}

func TestAddTransactionPrepends(t *testing.T) {
	s := newTestStore(t)
	first, err := s.AddTransaction(expense(10, "food"))
	require.NoError(t, err)
	second, err := s.AddTransaction(expense(20, "transport"))
	require.NoError(t, err)

	txns := s.Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, second.ID, txns[0].ID)
	assert.Equal(t, first.ID, txns[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, core.UAH, first.Currency, "currency defaults from settings")
}

func TestAddTransactionValidation(t *testing.T) {
	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"zero amount", expense(0, "food"), core.ErrInvalidAmount},
		{"missing category", expense(1, ""), core.ErrEmptyCategory},
		{"unknown category", expense(1, "nope"), core.ErrUnknownCategory},
		{"income into expense category", core.Transaction{Type: core.Income, Amount: core.MoneyFromInt(1), CategoryID: "food"}, core.ErrCategoryMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			rev := s.Revision()
			_, err := s.AddTransaction(tt.tx)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Empty(t, s.Transactions())
			assert.Equal(t, rev, s.Revision())
		})
	}
}

func TestBothCategoryAcceptsEitherType(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTransaction(core.Transaction{Type: core.Income, Amount: core.MoneyFromInt(5), CategoryID: "other"})
	require.NoError(t, err)
	_, err = s.AddTransaction(expense(5, "other"))
	require.NoError(t, err)
}

func TestAddTransactionDefaultsDate(t *testing.T) {
	s := newTestStore(t)
	tx := expense(3, "food")
	tx.Date = time.Time{}
	got, err := s.AddTransaction(tx)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(testNow))
}

func TestUpdateMissingIDLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTransaction(expense(10, "food"))
	require.NoError(t, err)

	before := s.Snapshot()
	rev := s.Revision()

	changed, err := s.UpdateTransaction(core.Transaction{ID: "missing", Type: core.Expense, Amount: core.MoneyFromInt(1), CategoryID: "food", Date: testNow})
	require.NoError(t, err)
	assert.False(t, changed)

	ok, err := s.UpdateBudget(core.Budget{ID: "missing", CategoryID: "food", Amount: core.MoneyFromInt(1)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateCategory(core.Category{ID: "missing", Name: "x", Type: core.CategoryBoth})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateReminder(core.Reminder{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, rev, s.Revision())
	assert.True(t, reflect.DeepEqual(before, s.Snapshot()))

	a, err := core.EncodeState(before)
	require.NoError(t, err)
	b, err := core.EncodeState(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "encoded state must be byte-for-byte identical")
}

func TestUpdateTransactionReplaces(t *testing.T) {
	s := newTestStore(t)
	added, err := s.AddTransaction(expense(10, "food"))
	require.NoError(t, err)

	added.Amount = core.MoneyFromInt(99)
	added.Description = "  dinner "
	changed, err := s.UpdateTransaction(added)
	require.NoError(t, err)
	assert.True(t, changed)

	got := s.Transactions()[0]
	assert.True(t, got.Amount.Equal(core.MoneyFromInt(99)))
	assert.Equal(t, "dinner", got.Description)

	added.Amount = core.Money{}
	_, err = s.UpdateTransaction(added)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	s := newTestStore(t)
	rev := s.Revision()
	assert.False(t, s.DeleteTransaction("nope"))
	assert.False(t, s.DeleteBudget("nope"))
	assert.False(t, s.DeleteReminder("nope"))
	ok, err := s.DeleteCategory("nope")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, rev, s.Revision())
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestStore(t)
	before := s.Categories()

	_, err := s.DeleteCategory("food")
	assert.ErrorIs(t, err, core.ErrCategoryBuiltIn)
	assert.ErrorIs(t, err, core.ErrRejected)
	assert.Equal(t, before, s.Categories())

	c, err := s.AddCategory(core.Category{Name: " Pets ", Type: core.CategoryExpense, IsCustom: false})
	require.NoError(t, err)
	assert.True(t, c.IsCustom)
	assert.Equal(t, "Pets", c.Name)
	cats := s.Categories()
	assert.Equal(t, c.ID, cats[len(cats)-1].ID, "categories append")

	_, err = s.AddCategory(core.Category{Name: "  ", Type: core.CategoryExpense})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	builtin, ok := s.Category("food")
	require.True(t, ok)
	builtin.IsCustom = true
	builtin.Name = "Meals"
	changed, err := s.UpdateCategory(builtin)
	require.NoError(t, err)
	assert.True(t, changed)
	_, err = s.DeleteCategory("food")
	assert.ErrorIs(t, err, core.ErrCategoryBuiltIn, "update must not make a built-in deletable")

	ok, err = s.DeleteCategory(c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, found := s.Category(c.ID)
	assert.False(t, found)
}

func TestDanglingCategoryReference(t *testing.T) {
	s := newTestStore(t)
	c, err := s.AddCategory(core.Category{Name: "Pets", Type: core.CategoryExpense})
	require.NoError(t, err)
	tx, err := s.AddTransaction(expense(5, c.ID))
	require.NoError(t, err)
	_, err = s.DeleteCategory(c.ID)
	require.NoError(t, err)

	assert.Equal(t, c.ID, s.Transactions()[0].CategoryID)
	_, ok := s.Category(tx.CategoryID)
	assert.False(t, ok)
}

func TestBudgetLifecycle(t *testing.T) {
	s := newTestStore(t)
	n := len(s.Budgets())

	b, err := s.AddBudget(core.Budget{CategoryID: "travel", Amount: core.MoneyFromInt(500), Spent: core.MoneyFromInt(77)})
	require.NoError(t, err)
	assert.True(t, b.Spent.IsZero())
	assert.Equal(t, core.PeriodMonthly, b.Period)
	require.Len(t, s.Budgets(), n+1)
	assert.Equal(t, b.ID, s.Budgets()[n].ID)

	_, err = s.AddBudget(core.Budget{CategoryID: "travel", Amount: core.MoneyFromInt(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	assert.True(t, s.DeleteBudget(b.ID))
	assert.Len(t, s.Budgets(), n)
}

func TestReminderLifecycle(t *testing.T) {
	s := newTestStore(t)
	r, err := s.AddReminder(core.Reminder{
		Title: "Gym", Amount: core.MoneyFromInt(600), CategoryID: "health",
		DueDate: testNow, IsRecurring: true, RecurringInterval: core.Monthly, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, r.ID, s.Reminders()[len(s.Reminders())-1].ID)

	r.IsActive = false
	changed, err := s.UpdateReminder(r)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, s.Reminders()[len(s.Reminders())-1].IsActive)

	_, err = s.AddReminder(core.Reminder{Title: "", Amount: core.MoneyFromInt(1), CategoryID: "health", DueDate: testNow})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
}

func TestUpdateSettingsMerges(t *testing.T) {
	s := newTestStore(t)
	usd := core.USD
	got, err := s.UpdateSettings(core.SettingsPatch{DefaultCurrency: &usd})
	require.NoError(t, err)
	assert.Equal(t, core.USD, got.DefaultCurrency)
	assert.Equal(t, "uk", got.Language)

	rev := s.Revision()
	_, err = s.UpdateSettings(core.SettingsPatch{DefaultCurrency: &usd})
	require.NoError(t, err)
	assert.Equal(t, rev, s.Revision(), "no-op patch keeps revision")

	bad := core.Theme("neon")
	_, err = s.UpdateSettings(core.SettingsPatch{Theme: &bad})
	assert.True(t, errors.Is(err, core.ErrInvalidTheme))
	assert.Equal(t, core.ThemeSystem, s.Settings().Theme)

	tx, err := s.AddTransaction(expense(1, "food"))
	require.NoError(t, err)
	assert.Equal(t, core.USD, tx.Currency)
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTransaction(expense(10, "food"))
	require.NoError(t, err)

	view := s.Transactions()
	snap := s.Snapshot()
	snap.Transactions[0].Description = "mutated"

	_, err = s.AddTransaction(expense(20, "food"))
	require.NoError(t, err)
	require.True(t, s.DeleteTransaction(view[0].ID))

	assert.Len(t, view, 1, "earlier read must not observe later writes")
	assert.Empty(t, s.Transactions()[0].Description)
}

func TestConcurrentWriters(t *testing.T) {
	s := New(core.State{Categories: core.DefaultCategories})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = s.AddTransaction(expense(1, "food"))
				_ = s.Transactions()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Transactions(), 500)
	assert.Equal(t, uint64(500), s.Revision())

	seen := make(map[string]struct{})
	for _, tx := range s.Transactions() {
		seen[tx.ID] = struct{}{}
	}
	assert.Len(t, seen, 500, "ids must be unique")
}

func TestDemoTransactions(t *testing.T) {
	txns := DemoTransactions(testNow, rand.New(rand.NewSource(1)), nil)
	require.NotEmpty(t, txns)
	for i := 1; i < len(txns); i++ {
		assert.False(t, txns[i].Date.After(txns[i-1].Date), "demo data must be newest first")
	}
	earliest := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range txns {
		require.NoError(t, tx.Validate())
		assert.False(t, tx.Date.Before(earliest))
	}
}
