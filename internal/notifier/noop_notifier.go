package notifier

import (
	"context"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// NoopNotifier discards all events. Used when no broker is configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) BookingConfirmed(ctx context.Context, booking *domain.Booking) {}
func (n *NoopNotifier) BookingCancelled(ctx context.Context, booking *domain.Booking) {}
func (n *NoopNotifier) BookingFailed(ctx context.Context, booking *domain.Booking)    {}

var _ Notifier = (*NoopNotifier)(nil)
