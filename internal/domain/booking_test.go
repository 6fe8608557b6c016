package domain

import (
	"errors"
	"testing"
	"time"
)

func testBooking(status BookingStatus, scheduleDate time.Time) *Booking {
	now := time.Now().UTC()
	return &Booking{
		ID:           "booking-1",
		ProductID:    "prod-1",
		ScheduleID:   "sched-1",
		ScheduleDate: scheduleDate,
		UserID:       "user-1",
		TicketCount:  2,
		Method:       PaymentMethodCard,
		Status:       status,
		TotalMinor:   24000,
		Currency:     "MAD",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestBookingValidate(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantErr bool
	}{
		{name: "valid booking", mutate: func(b *Booking) {}},
		{name: "empty id", mutate: func(b *Booking) { b.ID = "" }, wantErr: true},
		{name: "zero tickets", mutate: func(b *Booking) { b.TicketCount = 0 }, wantErr: true},
		{name: "unknown method", mutate: func(b *Booking) { b.Method = "check" }, wantErr: true},
		{name: "unknown status", mutate: func(b *Booking) { b.Status = "limbo" }, wantErr: true},
		{name: "negative total", mutate: func(b *Booking) { b.TotalMinor = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBooking(BookingStatusPending, future)
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestBookingConfirm(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	now := time.Now().UTC()

	b := testBooking(BookingStatusPending, future)
	if err := b.Confirm("pi_123", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Status != BookingStatusConfirmed {
		t.Errorf("Expected status confirmed, got %s", b.Status)
	}
	if b.PaymentRef != "pi_123" {
		t.Errorf("Expected payment ref pi_123, got %s", b.PaymentRef)
	}
	if b.ConfirmedAt == nil {
		t.Error("Expected ConfirmedAt to be set")
	}

	// Confirming again is an invalid transition
	if err := b.Confirm("pi_456", now); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("Expected ErrInvalidStateTransition, got %v", err)
	}
	if b.PaymentRef != "pi_123" {
		t.Error("Second confirm must not overwrite the payment ref")
	}
}

func TestBookingConfirm_FromTerminalStates(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	now := time.Now().UTC()

	for _, status := range []BookingStatus{BookingStatusFailed, BookingStatusCancelled} {
		b := testBooking(status, future)
		if err := b.Confirm("pi_123", now); !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("Confirm from %s: expected ErrInvalidStateTransition, got %v", status, err)
		}
	}
}

func TestBookingFail(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	now := time.Now().UTC()

	b := testBooking(BookingStatusPending, future)
	if err := b.Fail("card declined", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Status != BookingStatusFailed {
		t.Errorf("Expected status failed, got %s", b.Status)
	}
	if b.StatusReason != "card declined" {
		t.Errorf("Expected reason recorded, got %q", b.StatusReason)
	}

	confirmed := testBooking(BookingStatusConfirmed, future)
	if err := confirmed.Fail("late failure", now); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("Fail on confirmed booking: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestBookingCancel(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name         string
		status       BookingStatus
		scheduleDate time.Time
		wantErr      bool
	}{
		{name: "pending before schedule date", status: BookingStatusPending, scheduleDate: future},
		{name: "confirmed before schedule date", status: BookingStatusConfirmed, scheduleDate: future},
		{name: "confirmed after schedule date", status: BookingStatusConfirmed, scheduleDate: past, wantErr: true},
		{name: "failed booking", status: BookingStatusFailed, scheduleDate: future, wantErr: true},
		{name: "already cancelled", status: BookingStatusCancelled, scheduleDate: future, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBooking(tt.status, tt.scheduleDate)
			err := b.Cancel(now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStateTransition) {
					t.Errorf("Expected ErrInvalidStateTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if b.Status != BookingStatusCancelled {
				t.Errorf("Expected status cancelled, got %s", b.Status)
			}
			if b.CancelledAt == nil {
				t.Error("Expected CancelledAt to be set")
			}
		})
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	valid := []PaymentMethod{
		PaymentMethodCard, PaymentMethodWallet, PaymentMethodLocalCard,
		PaymentMethodCashOnPickup, PaymentMethodCashOnDelivery, PaymentMethodBankTransfer,
	}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("Expected %s to be valid", m)
		}
	}
	if PaymentMethod("cheque").IsValid() {
		t.Error("Expected cheque to be invalid")
	}
}

func TestCapacityErrorUnwrap(t *testing.T) {
	err := &CapacityError{ScheduleID: "sched-1", Requested: 3, Remaining: 2}
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Error("CapacityError must unwrap to ErrCapacityExceeded")
	}
}
