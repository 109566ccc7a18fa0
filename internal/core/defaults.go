package core

import "time"

// DefaultCategories is the built-in category set shipped with a new ledger.
var DefaultCategories = []Category{
	{ID: "food", Name: "Їжа", Icon: "🍔", Color: "#FF6B6B", Type: CategoryExpense},
	{ID: "transport", Name: "Транспорт", Icon: "🚗", Color: "#4ECDC4", Type: CategoryExpense},
	{ID: "housing", Name: "Житло", Icon: "🏠", Color: "#45B7D1", Type: CategoryExpense},
	{ID: "entertainment", Name: "Розваги", Icon: "🎮", Color: "#96CEB4", Type: CategoryExpense},
	{ID: "health", Name: "Здоров'я", Icon: "💊", Color: "#FFEAA7", Type: CategoryExpense},
	{ID: "shopping", Name: "Покупки", Icon: "🛍️", Color: "#DDA0DD", Type: CategoryExpense},
	{ID: "education", Name: "Освіта", Icon: "📚", Color: "#98D8C8", Type: CategoryExpense},
	{ID: "travel", Name: "Подорожі", Icon: "✈️", Color: "#F7DC6F", Type: CategoryExpense},
	{ID: "salary", Name: "Зарплата", Icon: "💼", Color: "#82E0AA", Type: CategoryIncome},
	{ID: "freelance", Name: "Фріланс", Icon: "💻", Color: "#85C1E9", Type: CategoryIncome},
	{ID: "investment", Name: "Інвестиції", Icon: "📈", Color: "#F8C471", Type: CategoryIncome},
	{ID: "gift", Name: "Подарунок", Icon: "🎁", Color: "#F1948A", Type: CategoryIncome},
	{ID: "other", Name: "Інше", Icon: "📦", Color: "#AEB6BF", Type: CategoryBoth},
}

// FallbackCategoryID is the built-in category accepting both types.
const FallbackCategoryID = "other"

// DefaultSettings applies to a ledger with no stored settings.
var DefaultSettings = Settings{
	DefaultCurrency:  UAH,
	Theme:            ThemeSystem,
	PinEnabled:       false,
	BiometricEnabled: false,
	Language:         "uk",
}

// DefaultState builds the seed ledger: built-in categories, default
// settings, four monthly budgets and two monthly reminders dated in the
// month of now.
func DefaultState(now time.Time, newID func() string) State {
	y, m, _ := now.Date()
	loc := now.Location()
	budget := func(cat string, amount int64) Budget {
		return Budget{ID: newID(), CategoryID: cat, Amount: MoneyFromInt(amount), Currency: UAH, Period: PeriodMonthly}
	}
	return State{
		Transactions: []Transaction{},
		Categories:   append([]Category(nil), DefaultCategories...),
		Budgets: []Budget{
			budget("food", 8000),
			budget("transport", 3000),
			budget("entertainment", 2000),
			budget("shopping", 5000),
		},
		Reminders: []Reminder{
			{
				ID: newID(), Title: "Оренда квартири", Amount: MoneyFromInt(8000), Currency: UAH,
				CategoryID: "housing", DueDate: time.Date(y, m, 1, 0, 0, 0, 0, loc),
				IsRecurring: true, RecurringInterval: Monthly, IsActive: true,
			},
			{
				ID: newID(), Title: "Інтернет", Amount: MoneyFromInt(300), Currency: UAH,
				CategoryID: "housing", DueDate: time.Date(y, m, 10, 0, 0, 0, 0, loc),
				IsRecurring: true, RecurringInterval: Monthly, IsActive: true,
			},
		},
		Settings: DefaultSettings,
	}
}
