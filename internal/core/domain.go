package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"

	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
	Yearly  Interval = "yearly"

	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"

	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

const maxDescriptionLen = 200

type (
	TransactionType string
	CategoryType    string
	Interval        string
	BudgetPeriod    string
	Theme           string

	Transaction struct {
		ID                string          `json:"id"`
		Type              TransactionType `json:"type"`
		Amount            Money           `json:"amount"`
		Currency          Currency        `json:"currency"`
		CategoryID        string          `json:"categoryId"`
		Description       string          `json:"description"`
		Date              time.Time       `json:"date"`
		IsRecurring       bool            `json:"isRecurring,omitempty"`
		RecurringInterval Interval        `json:"recurringInterval,omitempty"`
		Tags              []string        `json:"tags,omitempty"`

		// notRecurring records an explicit "isRecurring": false in the
		// decoded document so it is written back.
		notRecurring bool
	}

	Category struct {
		ID       string       `json:"id"`
		Name     string       `json:"name"`
		Icon     string       `json:"icon"`
		Color    string       `json:"color"`
		Type     CategoryType `json:"type"`
		IsCustom bool         `json:"isCustom,omitempty"`

		notCustom bool
	}

	// Budget caps spending for one category. Spent is a stored snapshot
	// and goes stale on any transaction change; recompute before display.
	Budget struct {
		ID         string       `json:"id"`
		CategoryID string       `json:"categoryId"`
		Amount     Money        `json:"amount"`
		Currency   Currency     `json:"currency"`
		Period     BudgetPeriod `json:"period"`
		Spent      Money        `json:"spent"`
	}

	// Reminder is informational only. A recurring reminder keeps its
	// DueDate; the next occurrence is projected, never written back.
	Reminder struct {
		ID                string    `json:"id"`
		Title             string    `json:"title"`
		Amount            Money     `json:"amount"`
		Currency          Currency  `json:"currency"`
		CategoryID        string    `json:"categoryId"`
		DueDate           time.Time `json:"dueDate"`
		IsRecurring       bool      `json:"isRecurring"`
		RecurringInterval Interval  `json:"recurringInterval,omitempty"`
		IsActive          bool      `json:"isActive"`
	}

	Settings struct {
		DefaultCurrency  Currency `json:"defaultCurrency"`
		Theme            Theme    `json:"theme"`
		PinEnabled       bool     `json:"pinEnabled"`
		Pin              string   `json:"pin,omitempty"`
		BiometricEnabled bool     `json:"biometricEnabled"`
		Language         string   `json:"language"`
	}

	// SettingsPatch is a partial settings update; nil fields are kept.
	SettingsPatch struct {
		DefaultCurrency  *Currency `json:"defaultCurrency,omitempty"`
		Theme            *Theme    `json:"theme,omitempty"`
		PinEnabled       *bool     `json:"pinEnabled,omitempty"`
		Pin              *string   `json:"pin,omitempty"`
		BiometricEnabled *bool     `json:"biometricEnabled,omitempty"`
		Language         *string   `json:"language,omitempty"`
	}
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRejected     = errors.New("operation rejected")

	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrInvalidType        = fmt.Errorf("%w: invalid type", ErrInvalidInput)
	ErrEmptyCategory      = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrUnknownCategory    = fmt.Errorf("%w: unknown category", ErrInvalidInput)
	ErrCategoryMismatch   = fmt.Errorf("%w: category does not accept this transaction type", ErrInvalidInput)
	ErrEmptyName          = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrEmptyTitle         = fmt.Errorf("%w: empty title", ErrInvalidInput)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidInput, maxDescriptionLen)
	ErrInvalidPeriod      = fmt.Errorf("%w: invalid budget period", ErrInvalidInput)
	ErrInvalidInterval    = fmt.Errorf("%w: invalid recurring interval", ErrInvalidInput)
	ErrInvalidDate        = fmt.Errorf("%w: date cannot be zero", ErrInvalidInput)
	ErrInvalidTheme       = fmt.Errorf("%w: invalid theme", ErrInvalidInput)

	ErrCategoryBuiltIn = fmt.Errorf("%w: built-in categories cannot be deleted", ErrRejected)
)

func (t TransactionType) Valid() bool { return t == Income || t == Expense }

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense || t == CategoryBoth
}

func (i Interval) Valid() bool {
	switch i {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool { return p == PeriodWeekly || p == PeriodMonthly }

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark || t == ThemeSystem }

// Accepts reports whether transactions of type t may use this category.
func (c Category) Accepts(t TransactionType) bool {
	switch c.Type {
	case CategoryBoth:
		return true
	case CategoryIncome:
		return t == Income
	case CategoryExpense:
		return t == Expense
	}
	return false
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(tx.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if tx.IsRecurring && tx.RecurringInterval != "" && !tx.RecurringInterval.Valid() {
		return ErrInvalidInterval
	}
	return nil
}

// Signed returns the amount with the sign implied by the transaction type.
func (tx Transaction) Signed() Money {
	if tx.Type == Expense {
		return Money{}.Sub(tx.Amount)
	}
	return tx.Amount
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if r.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if r.IsRecurring && !r.RecurringInterval.Valid() {
		return ErrInvalidInterval
	}
	return nil
}

func (s Settings) Validate() error {
	if !s.Theme.Valid() {
		return ErrInvalidTheme
	}
	if s.DefaultCurrency == "" {
		return fmt.Errorf("%w: empty default currency", ErrInvalidInput)
	}
	return nil
}

// Apply merges the non-nil fields of p into s.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.DefaultCurrency != nil {
		s.DefaultCurrency = *p.DefaultCurrency
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.PinEnabled != nil {
		s.PinEnabled = *p.PinEnabled
	}
	if p.Pin != nil {
		s.Pin = *p.Pin
	}
	if p.BiometricEnabled != nil {
		s.BiometricEnabled = *p.BiometricEnabled
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}
