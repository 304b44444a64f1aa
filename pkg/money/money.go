// Package money converts the backend's integer minor-unit amounts into
// decimals and locale-aware display strings.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when a cart or option carries no currency code.
const DefaultCurrency = "cad"

// Unit resolves an ISO 4217 code case-insensitively, falling back to
// DefaultCurrency for empty or unknown codes.
func Unit(code string) currency.Unit {
	if u, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code))); err == nil {
		return u
	}
	return currency.MustParseISO(strings.ToUpper(DefaultCurrency))
}

// Scale is the number of minor-unit digits. The backend stores every
// currency in hundredths, JPY included.
const Scale int32 = 2

// Major converts an amount in minor units to its major-unit value: 4500 CAD
// is 45.00.
func Major(amount int64, _ string) decimal.Decimal {
	return decimal.New(amount, -Scale)
}

// Minor is the inverse of Major, rounding half away from zero.
func Minor(major decimal.Decimal, _ string) int64 {
	return major.Shift(Scale).Round(0).IntPart()
}

// Format renders amount for display in the given locale: "CA$45.00" in en,
// "€45,00" in fr.
func Format(amount int64, code string, tag language.Tag) string {
	value, _ := Major(amount, code).Float64()

	p := message.NewPrinter(tag)
	symbol := p.Sprint(currency.Symbol(Unit(code)))
	return symbol + p.Sprintf(fmt.Sprintf("%%.%df", Scale), value)
}

// Price is a display-ready amount.
type Price struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency_code"`
	Decimal   string `json:"decimal"`
	Formatted string `json:"formatted"`
}

// NewPrice builds a Price; the currency code is lower-cased to match the
// backend's convention.
func NewPrice(amount int64, code string, tag language.Tag) Price {
	if strings.TrimSpace(code) == "" {
		code = DefaultCurrency
	}
	return Price{
		Amount:    amount,
		Currency:  strings.ToLower(code),
		Decimal:   Major(amount, code).StringFixed(Scale),
		Formatted: Format(amount, code, tag),
	}
}
