package domain

import "time"

// AddOn is an optional extra a product offers, priced per ticket
type AddOn struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Enabled bool    `json:"enabled"`
	Price   float64 `json:"price"` // decimal, base-currency units
}

// Product is a bookable experience owned by the catalog. It is
// immutable for the duration of a checkout.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	BasePrice *float64 `json:"base_price,omitempty"` // decimal, base-currency units
	AddOns    []AddOn  `json:"add_ons,omitempty"`
}

// AddOnByID returns the add-on with the given ID, if present
func (p *Product) AddOnByID(id string) (*AddOn, bool) {
	for i := range p.AddOns {
		if p.AddOns[i].ID == id {
			return &p.AddOns[i], true
		}
	}
	return nil, false
}

// Schedule is a bookable date/time slot of a product with its own
// price override and capacity. The engine reads everything and mutates
// only BookedCount, through the capacity gate.
type Schedule struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // "15:04" wall-clock label
	Price       *float64  `json:"price,omitempty"` // decimal override of the product base price
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
}

// Remaining returns how many tickets are still available
func (s *Schedule) Remaining() int {
	r := s.Capacity - s.BookedCount
	if r < 0 {
		return 0
	}
	return r
}

// IsPast reports whether the schedule's date is already behind the
// given instant.
func (s *Schedule) IsPast(now time.Time) bool {
	return s.Date.Before(now)
}
