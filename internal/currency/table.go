// Package currency implements the conversion table used to render
// prices in a visitor-selected currency. Every rate is expressed
// relative to a single base currency, so any pair converts through the
// same two-step divide-then-multiply and round trips exactly under a
// fixed table.
package currency

import (
	"fmt"
	"math"
	"sync"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// BaseCurrency is the currency all rates are expressed relative to
const BaseCurrency = "MAD"

// DefaultRates is the built-in table; values are units of the currency
// per one unit of the base currency.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"MAD": 1.0,
		"EUR": 0.093,
		"USD": 0.10,
		"GBP": 0.079,
	}
}

// Table is a read-mostly rate table safe for concurrent use
type Table struct {
	mu    sync.RWMutex
	base  string
	rates map[string]float64
}

// NewTable creates a table with the given rates. A nil or empty map
// falls back to the built-in defaults. The base currency is always
// pinned at rate 1.
func NewTable(base string, rates map[string]float64) *Table {
	if base == "" {
		base = BaseCurrency
	}
	if len(rates) == 0 {
		rates = DefaultRates()
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}
	copied[base] = 1.0
	return &Table{base: base, rates: copied}
}

// Base returns the base currency code
func (t *Table) Base() string {
	return t.base
}

// Convert converts an amount between two supported currencies.
// A zero or non-finite amount converts to 0 so display paths never
// fail on degenerate input; unknown codes are an error.
func (t *Table) Convert(amount float64, from, to string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fromRate, ok := t.rates[from]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, from)
	}
	toRate, ok := t.rates[to]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, to)
	}

	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, nil
	}

	// Always divide by the source rate first so A→B and B→A are exact
	// inverses under the same table.
	return amount / fromRate * toRate, nil
}

// Supported reports whether a currency code is in the table
func (t *Table) Supported(code string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rates[code]
	return ok
}

// Rates returns a copy of the current rate table
func (t *Table) Rates() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	copied := make(map[string]float64, len(t.rates))
	for code, rate := range t.rates {
		copied[code] = rate
	}
	return copied
}

// SetRates replaces the table, keeping the base pinned at 1
func (t *Table) SetRates(rates map[string]float64) {
	if len(rates) == 0 {
		return
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		if rate > 0 {
			copied[code] = rate
		}
	}
	copied[t.base] = 1.0

	t.mu.Lock()
	t.rates = copied
	t.mu.Unlock()
}

// Format renders an amount for display: the base currency uses no
// fractional digits, every other currency uses two.
func (t *Table) Format(amount float64, code string) string {
	if code == t.base {
		return fmt.Sprintf("%.0f %s", amount, code)
	}
	return fmt.Sprintf("%.2f %s", amount, code)
}
