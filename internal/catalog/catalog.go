// Package catalog resolves products and schedules for pricing and
// checkout. The engine does not own the catalog; it reads it.
package catalog

import (
	"context"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// Catalog looks up products and schedules
type Catalog interface {
	// GetProduct retrieves a product with its add-on definitions
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetSchedule retrieves a schedule slot
	GetSchedule(ctx context.Context, id string) (*domain.Schedule, error)
}
