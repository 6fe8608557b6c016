// Package money provides fixed-point monetary amounts in integer minor
// units. All engine-internal arithmetic happens on int64 minor units;
// decimal values exist only at the public boundary.
package money

import (
	"errors"
	"fmt"
	"math"
)

// ErrCurrencyMismatch is returned when two amounts of different
// currencies are combined without explicit conversion.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// minorUnitsPerMajor is the scale for all supported currencies (2 decimals)
const minorUnitsPerMajor = 100

// Amount is a monetary value in minor units paired with a currency code
type Amount struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

// Zero returns a zero amount in the given currency
func Zero(currency string) Amount {
	return Amount{Minor: 0, Currency: currency}
}

// FromDecimal converts a decimal value into minor units, rounding half
// away from zero. Non-finite input yields a zero amount.
func FromDecimal(value float64, currency string) Amount {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Zero(currency)
	}
	return Amount{
		Minor:    int64(math.Round(value * minorUnitsPerMajor)),
		Currency: currency,
	}
}

// Decimal returns the decimal representation of the amount
func (a Amount) Decimal() float64 {
	return float64(a.Minor) / minorUnitsPerMajor
}

// Add returns a + b; both must share a currency
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Minor: a.Minor + b.Minor, Currency: a.Currency}, nil
}

// MulInt returns the amount multiplied by an integer factor
func (a Amount) MulInt(n int64) Amount {
	return Amount{Minor: a.Minor * n, Currency: a.Currency}
}

// IsNegative reports whether the amount is below zero
func (a Amount) IsNegative() bool {
	return a.Minor < 0
}

// IsZero reports whether the amount is exactly zero
func (a Amount) IsZero() bool {
	return a.Minor == 0
}

func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.Decimal(), a.Currency)
}
