package capacity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/pkg/database"
)

// PostgresGate implements Gate with a conditional UPDATE: the guard
// lives in the WHERE clause, so two reservations that would jointly
// overflow capacity can never both commit (no lost update).
type PostgresGate struct {
	db *database.PostgresDB
}

// NewPostgresGate creates a PostgresGate
func NewPostgresGate(db *database.PostgresDB) *PostgresGate {
	return &PostgresGate{db: db}
}

// Reserve atomically checks and increments booked_count
func (g *PostgresGate) Reserve(ctx context.Context, scheduleID string, tickets int) (*Reservation, error) {
	if tickets < 1 {
		return nil, domain.ErrInvalidTicketCount
	}

	query := `
		UPDATE schedules
		SET booked_count = booked_count + $2
		WHERE id = $1 AND booked_count + $2 <= capacity
	`

	tag, err := g.db.Pool().Exec(ctx, query, scheduleID, tickets)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve capacity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the schedule is unknown or the increment would overflow
		var capacity, booked int
		err := g.db.QueryRow(ctx,
			`SELECT capacity, booked_count FROM schedules WHERE id = $1`,
			scheduleID,
		).Scan(&capacity, &booked)
		if err != nil {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, &domain.CapacityError{
			ScheduleID: scheduleID,
			Requested:  tickets,
			Remaining:  capacity - booked,
		}
	}

	return &Reservation{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Tickets:    tickets,
	}, nil
}

// Release decrements booked_count, flooring at zero
func (g *PostgresGate) Release(ctx context.Context, reservation *Reservation) error {
	if reservation == nil {
		return nil
	}

	query := `
		UPDATE schedules
		SET booked_count = GREATEST(booked_count - $2, 0)
		WHERE id = $1
	`

	tag, err := g.db.Pool().Exec(ctx, query, reservation.ScheduleID, reservation.Tickets)
	if err != nil {
		return fmt.Errorf("failed to release capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

var _ Gate = (*PostgresGate)(nil)
