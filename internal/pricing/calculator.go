// Package pricing computes the authoritative price breakdown for a
// checkout in base-currency minor units.
package pricing

import (
	"fmt"
	"math"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/internal/money"
)

// Breakdown is the computed price decomposition for a checkout. It is
// never persisted; the checkout service freezes Subtotal onto the
// booking at creation time.
type Breakdown struct {
	UnitPrice   money.Amount `json:"unit_price"`
	TicketCount int          `json:"ticket_count"`
	BaseTotal   money.Amount `json:"base_total"`
	AddOnTotal  money.Amount `json:"add_on_total"`
	Subtotal    money.Amount `json:"subtotal"`
}

// Calculator computes breakdowns in a fixed base currency
type Calculator struct {
	baseCurrency string
}

// NewCalculator creates a calculator pricing in the given base currency
func NewCalculator(baseCurrency string) *Calculator {
	return &Calculator{baseCurrency: baseCurrency}
}

// ComputeBreakdown prices ticketCount tickets on the schedule plus the
// selected add-ons. The unit price comes from the schedule, falling
// back to the product base price; if neither is valid the computation
// fails rather than booking at a fabricated default.
func (c *Calculator) ComputeBreakdown(product *domain.Product, schedule *domain.Schedule, ticketCount int, addOnIDs []string) (*Breakdown, error) {
	if ticketCount < 1 {
		return nil, domain.ErrInvalidTicketCount
	}

	unitPrice, err := c.resolveUnitPrice(product, schedule)
	if err != nil {
		return nil, err
	}

	baseTotal := unitPrice.MulInt(int64(ticketCount))

	addOnTotal := money.Zero(c.baseCurrency)
	for _, id := range addOnIDs {
		addOn, ok := product.AddOnByID(id)
		if !ok || !addOn.Enabled {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAddOn, id)
		}
		if !validPrice(addOn.Price) {
			return nil, fmt.Errorf("%w: add-on %s", domain.ErrNoValidPrice, id)
		}
		perTicket := money.FromDecimal(addOn.Price, c.baseCurrency)
		addOnTotal, _ = addOnTotal.Add(perTicket.MulInt(int64(ticketCount)))
	}

	subtotal, _ := baseTotal.Add(addOnTotal)
	if subtotal.IsNegative() {
		return nil, domain.ErrNoValidPrice
	}

	return &Breakdown{
		UnitPrice:   unitPrice,
		TicketCount: ticketCount,
		BaseTotal:   baseTotal,
		AddOnTotal:  addOnTotal,
		Subtotal:    subtotal,
	}, nil
}

func (c *Calculator) resolveUnitPrice(product *domain.Product, schedule *domain.Schedule) (money.Amount, error) {
	if schedule != nil && schedule.Price != nil && validPrice(*schedule.Price) {
		return money.FromDecimal(*schedule.Price, c.baseCurrency), nil
	}
	if product != nil && product.BasePrice != nil && validPrice(*product.BasePrice) {
		return money.FromDecimal(*product.BasePrice, c.baseCurrency), nil
	}
	return money.Amount{}, domain.ErrNoValidPrice
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
