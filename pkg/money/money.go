// Package money provides precise monetary amounts for transaction records.
// Amounts are shopspring decimals normalized to two decimal places; currency
// codes are validated against the ISO-4217 registry carried by go-money.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a transaction does not specify one.
const DefaultCurrency = "USD"

// Amount is a signed monetary value. Positive means money in, negative money out.
type Amount struct {
	d decimal.Decimal
}

// NewAmount builds an Amount from a float, rounding to two decimal places.
// Bank statements and API payloads carry floats; rounding here keeps a single
// normalization point instead of scattering Round(2) calls around.
func NewAmount(v float64) Amount {
	return Amount{d: decimal.NewFromFloat(v).Round(2)}
}

// NewAmountFromDecimal wraps an existing decimal, rounded to two places.
func NewAmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d.Round(2)}
}

// ParseAmount parses a decimal string such as "-12.50".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d.Round(2)}, nil
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Float64 returns the amount as a float for JSON payloads.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount { return Amount{d: a.d.Neg()} }

// Abs returns the absolute amount.
func (a Amount) Abs() Amount { return Amount{d: a.d.Abs()} }

// Equal reports value equality regardless of internal exponent.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// String renders the amount with two decimal places.
func (a Amount) String() string { return a.d.StringFixed(2) }

// MarshalJSON renders the amount as a plain JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	a.d = d.Round(2)
	return nil
}

// NormalizeCurrency validates a currency code against ISO-4217 and returns it
// uppercased, or the default when empty.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if gomoney.GetCurrency(code) == nil {
		return "", fmt.Errorf("unknown currency code %q", code)
	}
	return code, nil
}
