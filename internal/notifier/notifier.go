// Package notifier publishes booking lifecycle events for downstream
// consumers (ticket issuance, email, analytics). Publishing is
// fire-and-forget: a delivery failure is logged, never surfaced to the
// booking flow.
package notifier

import (
	"context"
	"time"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// Event types published to the booking events topic
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingFailed    = "booking.failed"
)

// BookingEvent is the envelope for all booking lifecycle events
type BookingEvent struct {
	Type        string               `json:"type"`
	BookingID   string               `json:"booking_id"`
	ProductID   string               `json:"product_id"`
	ScheduleID  string               `json:"schedule_id"`
	UserID      string               `json:"user_id"`
	Method      domain.PaymentMethod `json:"payment_method"`
	TotalMinor  int64                `json:"total_minor"`
	Currency    string               `json:"currency"`
	Reason      string               `json:"reason,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// Notifier publishes booking lifecycle events
type Notifier interface {
	// BookingConfirmed announces a successfully paid booking
	BookingConfirmed(ctx context.Context, booking *domain.Booking)

	// BookingCancelled announces a cancelled booking
	BookingCancelled(ctx context.Context, booking *domain.Booking)

	// BookingFailed announces a booking whose payment failed
	BookingFailed(ctx context.Context, booking *domain.Booking)
}

// NewEvent builds an event envelope from a booking
func NewEvent(eventType string, booking *domain.Booking) *BookingEvent {
	return &BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		ProductID:  booking.ProductID,
		ScheduleID: booking.ScheduleID,
		UserID:     booking.UserID,
		Method:     booking.Method,
		TotalMinor: booking.TotalMinor,
		Currency:   booking.Currency,
		Reason:     booking.StatusReason,
		OccurredAt: time.Now().UTC(),
	}
}
