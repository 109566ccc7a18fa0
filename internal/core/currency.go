package core

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	UAH Currency = "UAH"
	GBP Currency = "GBP"
	PLN Currency = "PLN"
)

// Currency is an ISO 4217 code. Codes outside the supported set are kept
// verbatim so stored data survives a round trip.
type Currency string

type CurrencyInfo struct {
	Code   Currency
	Symbol string
	Name   string
}

// Currencies lists the supported currencies in display order.
var Currencies = []CurrencyInfo{
	{Code: USD, Symbol: "$", Name: "US Dollar"},
	{Code: EUR, Symbol: "€", Name: "Euro"},
	{Code: UAH, Symbol: "₴", Name: "Ukrainian Hryvnia"},
	{Code: GBP, Symbol: "£", Name: "British Pound"},
	{Code: PLN, Symbol: "zł", Name: "Polish Zloty"},
}

// DefaultLocale is used by FormatCurrency.
var DefaultLocale = language.Ukrainian

func (c Currency) Supported() bool {
	_, ok := lookupCurrency(c)
	return ok
}

// Symbol returns the display symbol, or the raw code when unknown.
func (c Currency) Symbol() string {
	if info, ok := lookupCurrency(c); ok {
		return info.Symbol
	}
	return string(c)
}

func lookupCurrency(c Currency) (CurrencyInfo, bool) {
	for _, info := range Currencies {
		if info.Code == c {
			return info, true
		}
	}
	return CurrencyInfo{}, false
}

// FormatCurrency renders the symbol followed by the locale-grouped amount
// with up to two fraction digits.
func FormatCurrency(amount Money, c Currency) string {
	return FormatCurrencyIn(DefaultLocale, amount, c)
}

// FormatCurrencyIn is FormatCurrency with an explicit locale.
func FormatCurrencyIn(tag language.Tag, amount Money, c Currency) string {
	p := message.NewPrinter(tag)
	return c.Symbol() + p.Sprint(number.Decimal(amount.Float64(),
		number.MinFractionDigits(0),
		number.MaxFractionDigits(2),
	))
}
