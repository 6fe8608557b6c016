package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/pkg/database"
)

// PostgreSQL error code for unique violation
const pgUniqueViolationCode = "23505"

// ErrBookingAlreadyExists is returned when inserting a duplicate booking ID
var ErrBookingAlreadyExists = errors.New("booking already exists")

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db *database.PostgresDB
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository
func NewPostgresBookingRepository(db *database.PostgresDB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

const bookingColumns = `id, product_id, schedule_id, schedule_date, user_id, ticket_count,
	       payment_method, payment_ref, status, status_reason, total_minor, currency,
	       reservation_id, pending_verification, created_at, updated_at, confirmed_at, cancelled_at`

// Create inserts a new booking record
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id, product_id, schedule_id, schedule_date, user_id, ticket_count,
			payment_method, payment_ref, status, status_reason, total_minor, currency,
			reservation_id, pending_verification, created_at, updated_at, confirmed_at, cancelled_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	_, err := r.db.Pool().Exec(ctx, query,
		booking.ID,
		booking.ProductID,
		booking.ScheduleID,
		booking.ScheduleDate,
		booking.UserID,
		booking.TicketCount,
		string(booking.Method),
		booking.PaymentRef,
		string(booking.Status),
		booking.StatusReason,
		booking.TotalMinor,
		booking.Currency,
		booking.ReservationID,
		booking.PendingVerification,
		booking.CreatedAt,
		booking.UpdatedAt,
		booking.ConfirmedAt,
		booking.CancelledAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return ErrBookingAlreadyExists
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.db.Pool().QueryRow(ctx, query, id))
}

// GetByUserID retrieves bookings for a user, newest first
func (r *PostgresBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool().Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

// Update persists the current state of an existing booking
func (r *PostgresBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET payment_ref = $2,
		    status = $3,
		    status_reason = $4,
		    pending_verification = $5,
		    updated_at = $6,
		    confirmed_at = $7,
		    cancelled_at = $8,
		    capture_claimed = FALSE
		WHERE id = $1`

	result, err := r.db.Pool().Exec(ctx, query,
		booking.ID,
		booking.PaymentRef,
		string(booking.Status),
		booking.StatusReason,
		booking.PendingVerification,
		booking.UpdatedAt,
		booking.ConfirmedAt,
		booking.CancelledAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}

	return nil
}

// ClaimPending atomically claims a pending booking for one in-flight
// transition. The conditional UPDATE is the mutual-exclusion point:
// only one caller flips capture_claimed on a pending row.
func (r *PostgresBookingRepository) ClaimPending(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET capture_claimed = TRUE
		WHERE id = $1 AND status = 'pending' AND NOT capture_claimed
		RETURNING ` + bookingColumns

	booking, err := r.scanBooking(r.db.Pool().QueryRow(ctx, query, bookingID))
	if err == nil {
		return booking, nil
	}
	if errors.Is(err, domain.ErrBookingNotFound) {
		// No matching row: either the booking is gone or the claim was
		// lost to a concurrent transition.
		if _, getErr := r.GetByID(ctx, bookingID); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInvalidStateTransition
	}
	return nil, err
}

// ReleaseClaim clears a claim without changing the booking
func (r *PostgresBookingRepository) ReleaseClaim(ctx context.Context, bookingID string) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE bookings SET capture_claimed = FALSE WHERE id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to release booking claim: %w", err)
	}
	return nil
}

// scanBooking scans a single booking from a row
func (r *PostgresBookingRepository) scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var method, status string

	err := row.Scan(
		&booking.ID,
		&booking.ProductID,
		&booking.ScheduleID,
		&booking.ScheduleDate,
		&booking.UserID,
		&booking.TicketCount,
		&method,
		&booking.PaymentRef,
		&status,
		&booking.StatusReason,
		&booking.TotalMinor,
		&booking.Currency,
		&booking.ReservationID,
		&booking.PendingVerification,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	booking.Method = domain.PaymentMethod(method)
	booking.Status = domain.BookingStatus(status)

	return &booking, nil
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)
