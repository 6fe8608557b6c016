// Package gateway implements the payment method variants a booking can
// be completed with. Every variant exposes one capability: capture.
// Capture performs at most one external round-trip and is never
// retried here; a user re-submitting payment is the only retry path,
// so a double charge cannot originate inside the engine.
package gateway

import (
	"context"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// CaptureRequest carries everything a variant needs to capture payment
type CaptureRequest struct {
	BookingID   string
	UserID      string
	AmountMinor int64
	Currency    string
	Description string
	Metadata    map[string]string

	// Card details (card / local card variants)
	CardToken string
	ReturnURL string

	// Manual-payment details (cash variants)
	PickupInstruction string
	DeliveryAddress   string
}

// Confirmation is the opaque success marker produced by a capture
type Confirmation struct {
	Reference string               `json:"reference"`
	Method    domain.PaymentMethod `json:"method"`

	// PendingVerification marks confirmations that await an operator
	// action before the booking may be confirmed (bank transfer).
	PendingVerification bool `json:"pending_verification,omitempty"`

	// Instruction is a human-readable note shown to the customer
	// (pickup point, transfer reference, redirect URL).
	Instruction string `json:"instruction,omitempty"`
}

// PaymentGateway is one payment method variant
type PaymentGateway interface {
	// Capture attempts to collect payment for a booking. It returns a
	// confirmation, or a *domain.PaymentError when the gateway rejects
	// the payment or cannot be reached.
	Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error)

	// Method returns the payment method this variant handles
	Method() domain.PaymentMethod
}
