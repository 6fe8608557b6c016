package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/pkg/database"
)

// PostgresCatalog implements Catalog using PostgreSQL. Add-on
// definitions are stored denormalized as JSONB on the product row.
type PostgresCatalog struct {
	db *database.PostgresDB
}

// NewPostgresCatalog creates a new PostgreSQL catalog
func NewPostgresCatalog(db *database.PostgresDB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// GetProduct retrieves a product with its add-on definitions
func (c *PostgresCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, base_price, add_ons
		FROM products
		WHERE id = $1`

	var product domain.Product
	var addOnsJSON []byte

	err := c.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.BasePrice,
		&addOnsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(addOnsJSON) > 0 {
		if err := json.Unmarshal(addOnsJSON, &product.AddOns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal add-ons: %w", err)
		}
	}

	return &product, nil
}

// GetSchedule retrieves a schedule slot
func (c *PostgresCatalog) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `
		SELECT id, product_id, date, start_time, price, capacity, booked_count
		FROM schedules
		WHERE id = $1`

	var schedule domain.Schedule

	err := c.db.QueryRow(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.ProductID,
		&schedule.Date,
		&schedule.StartTime,
		&schedule.Price,
		&schedule.Capacity,
		&schedule.BookedCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	return &schedule, nil
}

var _ Catalog = (*PostgresCatalog)(nil)
