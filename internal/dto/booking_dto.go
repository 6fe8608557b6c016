// Package dto defines the request/response shapes of the HTTP API
package dto

import (
	"time"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// QuoteRequest asks for a price breakdown without creating a booking
type QuoteRequest struct {
	ProductID   string   `json:"product_id" binding:"required"`
	ScheduleID  string   `json:"schedule_id" binding:"required"`
	TicketCount int      `json:"ticket_count" binding:"required"`
	AddOnIDs    []string `json:"add_on_ids"`
	Currency    string   `json:"currency" binding:"required"`
}

// QuoteResponse carries the priced breakdown in the requested currency
type QuoteResponse struct {
	ProductID    string   `json:"product_id"`
	ScheduleID   string   `json:"schedule_id"`
	TicketCount  int      `json:"ticket_count"`
	Currency     string   `json:"currency"`
	UnitPrice    float64  `json:"unit_price"`
	BaseTotal    float64  `json:"base_total"`
	AddOnTotal   float64  `json:"add_on_total"`
	Subtotal     float64  `json:"subtotal"`
	DisplayTotal string   `json:"display_total"`
	AddOnIDs     []string `json:"add_on_ids,omitempty"`
}

// CreateBookingRequest creates a booking and attempts payment capture
type CreateBookingRequest struct {
	ProductID   string   `json:"product_id" binding:"required"`
	ScheduleID  string   `json:"schedule_id" binding:"required"`
	UserID      string   `json:"user_id" binding:"required"`
	TicketCount int      `json:"ticket_count" binding:"required"`
	AddOnIDs    []string `json:"add_on_ids"`
	Currency    string   `json:"currency" binding:"required"`

	PaymentMethod string `json:"payment_method" binding:"required"`

	// Method-specific payment details
	CardToken         string `json:"card_token,omitempty"`
	ReturnURL         string `json:"return_url,omitempty"`
	PickupInstruction string `json:"pickup_instruction,omitempty"`
	DeliveryAddress   string `json:"delivery_address,omitempty"`
}

// CompleteBookingRequest re-attempts payment capture on a pending booking
type CompleteBookingRequest struct {
	UserID string `json:"user_id" binding:"required"`

	CardToken         string `json:"card_token,omitempty"`
	ReturnURL         string `json:"return_url,omitempty"`
	PickupInstruction string `json:"pickup_instruction,omitempty"`
	DeliveryAddress   string `json:"delivery_address,omitempty"`
}

// CancelBookingRequest cancels a pending or confirmed booking
type CancelBookingRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// VerifyTransferRequest records an operator confirming receipt of a
// bank transfer
type VerifyTransferRequest struct {
	OperatorID  string `json:"operator_id" binding:"required"`
	TransferRef string `json:"transfer_ref" binding:"required"`
}

// BookingResponse is the API view of a booking record
type BookingResponse struct {
	ID                  string     `json:"id"`
	ProductID           string     `json:"product_id"`
	ScheduleID          string     `json:"schedule_id"`
	ScheduleDate        time.Time  `json:"schedule_date"`
	UserID              string     `json:"user_id"`
	TicketCount         int        `json:"ticket_count"`
	PaymentMethod       string     `json:"payment_method"`
	PaymentRef          string     `json:"payment_ref,omitempty"`
	Status              string     `json:"status"`
	StatusReason        string     `json:"status_reason,omitempty"`
	Total               float64    `json:"total"`
	DisplayTotal        string     `json:"display_total"`
	Currency            string     `json:"currency"`
	PendingVerification bool       `json:"pending_verification,omitempty"`
	Instruction         string     `json:"instruction,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
}

// FromBooking converts a domain booking to its API view. displayTotal
// and instruction are supplied by the caller because they depend on
// the currency table and the capture confirmation.
func FromBooking(b *domain.Booking, displayTotal, instruction string) *BookingResponse {
	return &BookingResponse{
		ID:                  b.ID,
		ProductID:           b.ProductID,
		ScheduleID:          b.ScheduleID,
		ScheduleDate:        b.ScheduleDate,
		UserID:              b.UserID,
		TicketCount:         b.TicketCount,
		PaymentMethod:       b.Method.String(),
		PaymentRef:          b.PaymentRef,
		Status:              b.Status.String(),
		StatusReason:        b.StatusReason,
		Total:               float64(b.TotalMinor) / 100,
		DisplayTotal:        displayTotal,
		Currency:            b.Currency,
		PendingVerification: b.PendingVerification,
		Instruction:         instruction,
		CreatedAt:           b.CreatedAt,
		ConfirmedAt:         b.ConfirmedAt,
		CancelledAt:         b.CancelledAt,
	}
}
