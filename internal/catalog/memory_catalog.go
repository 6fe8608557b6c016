package catalog

import (
	"context"
	"sync"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// MemoryCatalog implements Catalog in memory for tests and development
type MemoryCatalog struct {
	mu        sync.RWMutex
	products  map[string]*domain.Product
	schedules map[string]*domain.Schedule
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products:  make(map[string]*domain.Product),
		schedules: make(map[string]*domain.Schedule),
	}
}

// PutProduct stores or replaces a product
func (c *MemoryCatalog) PutProduct(product *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

// PutSchedule stores or replaces a schedule
func (c *MemoryCatalog) PutSchedule(schedule *domain.Schedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules[schedule.ID] = schedule
}

// GetProduct retrieves a product with its add-on definitions
func (c *MemoryCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// GetSchedule retrieves a schedule slot
func (c *MemoryCatalog) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schedule, ok := c.schedules[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return schedule, nil
}

var _ Catalog = (*MemoryCatalog)(nil)
