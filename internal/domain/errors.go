package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Pricing errors
	ErrInvalidTicketCount = errors.New("ticket count must be at least 1")
	ErrNoValidPrice       = errors.New("no valid price on schedule or product")
	ErrUnknownAddOn       = errors.New("unknown or disabled add-on")

	// Currency errors
	ErrUnsupportedCurrency = errors.New("unsupported currency code")

	// Capacity errors
	ErrCapacityExceeded = errors.New("schedule capacity exceeded")

	// Payment errors
	ErrMissingDeliveryAddress   = errors.New("delivery address is required")
	ErrMissingPickupInstruction = errors.New("pickup instruction is required")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")

	// Booking errors
	ErrBookingNotFound        = errors.New("booking not found")
	ErrInvalidStateTransition = errors.New("invalid booking state transition")

	// Catalog errors
	ErrProductNotFound  = errors.New("product not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSchedulePast     = errors.New("schedule date has passed")
)

// CapacityError reports a failed reservation with the remaining spots
type CapacityError struct {
	ScheduleID string
	Requested  int
	Remaining  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("schedule %s has %d spots remaining, %d requested", e.ScheduleID, e.Remaining, e.Requested)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// PaymentErrorKind distinguishes a gateway rejecting the payment from
// the gateway being unreachable.
type PaymentErrorKind string

const (
	GatewayRejected    PaymentErrorKind = "gateway_rejected"
	GatewayUnreachable PaymentErrorKind = "gateway_unreachable"
)

// PaymentError is returned by a payment gateway capture that did not
// produce a confirmation. It always carries a human-readable reason.
type PaymentError struct {
	Kind   PaymentErrorKind
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed (%s): %s", e.Kind, e.Reason)
}

// NewGatewayRejected builds a PaymentError for a gateway rejection
func NewGatewayRejected(reason string) *PaymentError {
	return &PaymentError{Kind: GatewayRejected, Reason: reason}
}

// NewGatewayUnreachable builds a PaymentError for a transport failure
func NewGatewayUnreachable(reason string) *PaymentError {
	return &PaymentError{Kind: GatewayUnreachable, Reason: reason}
}
