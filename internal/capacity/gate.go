// Package capacity guards schedules against overselling. Reserving is
// a single atomic check-and-increment of the booked count against
// capacity: of two reservations that would jointly overflow, exactly
// one succeeds.
package capacity

import "context"

// Reservation is the token returned by a successful Reserve and
// consumed by Release.
type Reservation struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Tickets    int    `json:"tickets"`
}

// Gate is the atomic capacity check-and-increment over schedules
type Gate interface {
	// Reserve atomically verifies bookedCount + tickets <= capacity and
	// increments bookedCount. On overflow it returns a *domain.CapacityError
	// carrying the remaining spots.
	Reserve(ctx context.Context, scheduleID string, tickets int) (*Reservation, error)

	// Release decrements bookedCount for a previously reserved token.
	// It is invoked when a booking transitions to Failed or Cancelled.
	Release(ctx context.Context, reservation *Reservation) error
}
