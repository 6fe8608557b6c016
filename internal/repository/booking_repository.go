package repository

import (
	"context"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// BookingRepository defines persistence for booking records
type BookingRepository interface {
	// Create inserts a new booking record
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByUserID retrieves bookings for a user, newest first
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)

	// Update persists the current state of an existing booking and
	// clears any claim held on it
	Update(ctx context.Context, booking *domain.Booking) error

	// ClaimPending atomically claims a pending booking for a single
	// in-flight transition, so concurrent captures, cancellations and
	// verifications are mutually exclusive per booking. Returns the
	// booking as stored at claim time. A booking that is not pending,
	// or is already claimed, returns ErrInvalidStateTransition.
	ClaimPending(ctx context.Context, bookingID string) (*domain.Booking, error)

	// ReleaseClaim clears a claim without changing the booking
	ReleaseClaim(ctx context.Context, bookingID string) error
}
