// Package core provides money parsing and handling utilities.
//
// This file contains the decimal-backed Money type used for every amount
// in the ledger, plus parsing of user-supplied amounts.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money { return Money{d: d} }

// MoneyFromInt returns a whole amount.
func MoneyFromInt(v int64) Money { return Money{d: decimal.NewFromInt(v)} }

// MoneyFromFloat converts a float64, as persisted by older clients.
func MoneyFromFloat(f float64) Money { return Money{d: decimal.NewFromFloat(f)} }

// MoneyFromCents returns the amount represented by a number of minor units.
func MoneyFromCents(cents int64) Money { return Money{d: decimal.New(cents, -2)} }

// ParseMoney converts a decimal string to Money with two-digit rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,34")  -> 12.34
//	ParseMoney("12.345") -> 12.35 (half-up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return Money{}, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{d: d.Round(2)}
	if !m.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// DivInt divides by a positive count; dividing by zero yields zero.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{d: m.d.Div(decimal.NewFromInt(n))}
}

// Ratio returns m/o as a float, or 0 when o is zero.
func (m Money) Ratio(o Money) float64 {
	if o.d.IsZero() {
		return 0
	}
	f, _ := m.d.Div(o.d).Float64()
	return f
}

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) IsZero() bool { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Float64 returns the nearest float representation.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// StringFixed renders exactly two fraction digits with a dot separator.
func (m Money) StringFixed() string { return m.d.StringFixed(2) }

func (m Money) String() string { return m.d.String() }

func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes Money as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.d = d
	return nil
}
