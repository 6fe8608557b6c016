package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// PaymentMethod identifies how a booking is paid
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodWallet         PaymentMethod = "wallet"
	PaymentMethodLocalCard      PaymentMethod = "local_card"
	PaymentMethodCashOnPickup   PaymentMethod = "cash_on_pickup"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodLocalCard,
		PaymentMethodCashOnPickup, PaymentMethodCashOnDelivery, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Booking is a single booking record driven through the payment flow.
// TotalMinor is frozen at creation time and is never recomputed from
// live schedule pricing afterwards.
type Booking struct {
	ID            string        `json:"id"`
	ProductID     string        `json:"product_id"`
	ScheduleID    string        `json:"schedule_id"`
	ScheduleDate  time.Time     `json:"schedule_date"`
	UserID        string        `json:"user_id"`
	TicketCount   int           `json:"ticket_count"`
	Method        PaymentMethod `json:"payment_method"`
	PaymentRef    string        `json:"payment_ref,omitempty"`
	Status        BookingStatus `json:"status"`
	StatusReason  string        `json:"status_reason,omitempty"`
	TotalMinor    int64         `json:"total_minor"`
	Currency      string        `json:"currency"`
	ReservationID string        `json:"reservation_id,omitempty"`

	// PendingVerification marks a bank-transfer booking waiting for an
	// operator to confirm receipt of funds. The booking stays Pending
	// until then; there is no automatic expiry.
	PendingVerification bool `json:"pending_verification,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Validate validates booking fields at creation time
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrBookingNotFound
	}
	if b.TicketCount < 1 {
		return ErrInvalidTicketCount
	}
	if !b.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if !b.Status.IsValid() {
		return ErrInvalidStateTransition
	}
	if b.TotalMinor < 0 {
		return ErrNoValidPrice
	}
	return nil
}

// IsPending checks if the booking is still pending payment
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if the booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsTerminal reports whether no further state-mutating operation is accepted
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusFailed || b.Status == BookingStatusCancelled
}

// CanConfirm checks if the booking can transition to Confirmed
func (b *Booking) CanConfirm() bool {
	return b.Status == BookingStatusPending
}

// CanCancel checks if the booking can transition to Cancelled at the
// given instant. Cancellation is only valid from Pending or Confirmed
// and only while the schedule date is still in the future.
func (b *Booking) CanCancel(now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	return now.Before(b.ScheduleDate)
}

// Confirm marks the booking as confirmed with the payment reference
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	if !b.CanConfirm() {
		return ErrInvalidStateTransition
	}
	b.Status = BookingStatusConfirmed
	b.PaymentRef = paymentRef
	b.PendingVerification = false
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Fail marks the booking as failed with a reason
func (b *Booking) Fail(reason string, now time.Time) error {
	if b.Status != BookingStatusPending {
		return ErrInvalidStateTransition
	}
	b.Status = BookingStatusFailed
	b.StatusReason = reason
	b.PendingVerification = false
	b.UpdatedAt = now
	return nil
}

// Cancel marks the booking as cancelled
func (b *Booking) Cancel(now time.Time) error {
	if !b.CanCancel(now) {
		return ErrInvalidStateTransition
	}
	b.Status = BookingStatusCancelled
	b.PendingVerification = false
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// BelongsToUser checks if the booking belongs to the specified user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}
