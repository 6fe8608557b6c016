package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

func newBooking(id, userID string, createdAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:           id,
		ProductID:    "prod-1",
		ScheduleID:   "sched-1",
		ScheduleDate: createdAt.Add(48 * time.Hour),
		UserID:       userID,
		TicketCount:  2,
		Method:       domain.PaymentMethodCard,
		Status:       domain.BookingStatusPending,
		TotalMinor:   24000,
		Currency:     "MAD",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestMemoryBookingRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	booking := newBooking("booking-1", "user-1", time.Now())
	if err := repo.Create(ctx, booking); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	found, err := repo.GetByID(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found.UserID != "user-1" || found.TotalMinor != 24000 {
		t.Errorf("Unexpected booking: %+v", found)
	}
}

func TestMemoryBookingRepository_CreateDuplicate(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	booking := newBooking("booking-1", "user-1", time.Now())
	repo.Create(ctx, booking)

	if err := repo.Create(ctx, booking); !errors.Is(err, ErrBookingAlreadyExists) {
		t.Errorf("Expected ErrBookingAlreadyExists, got %v", err)
	}
}

func TestMemoryBookingRepository_GetMissing(t *testing.T) {
	repo := NewMemoryBookingRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("Expected ErrBookingNotFound, got %v", err)
	}
}

func TestMemoryBookingRepository_Update(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	booking := newBooking("booking-1", "user-1", time.Now())
	repo.Create(ctx, booking)

	booking.Status = domain.BookingStatusConfirmed
	booking.PaymentRef = "pi_123"
	if err := repo.Update(ctx, booking); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	found, _ := repo.GetByID(ctx, "booking-1")
	if found.Status != domain.BookingStatusConfirmed || found.PaymentRef != "pi_123" {
		t.Errorf("Update not persisted: %+v", found)
	}
}

func TestMemoryBookingRepository_UpdateMissing(t *testing.T) {
	repo := NewMemoryBookingRepository()

	err := repo.Update(context.Background(), newBooking("missing", "user-1", time.Now()))
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("Expected ErrBookingNotFound, got %v", err)
	}
}

func TestMemoryBookingRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	repo.Create(ctx, newBooking("booking-1", "user-1", time.Now()))

	first, _ := repo.GetByID(ctx, "booking-1")
	first.Status = domain.BookingStatusCancelled

	second, _ := repo.GetByID(ctx, "booking-1")
	if second.Status != domain.BookingStatusPending {
		t.Error("Mutating a returned booking must not affect the stored record")
	}
}

func TestMemoryBookingRepository_GetByUserID(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	base := time.Now()

	repo.Create(ctx, newBooking("booking-1", "user-1", base.Add(-2*time.Hour)))
	repo.Create(ctx, newBooking("booking-2", "user-1", base.Add(-1*time.Hour)))
	repo.Create(ctx, newBooking("booking-3", "user-2", base))

	bookings, err := repo.GetByUserID(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("Expected 2 bookings, got %d", len(bookings))
	}
	// Newest first
	if bookings[0].ID != "booking-2" {
		t.Errorf("Expected booking-2 first, got %s", bookings[0].ID)
	}

	limited, _ := repo.GetByUserID(ctx, "user-1", 1, 0)
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d bookings", len(limited))
	}

	offset, _ := repo.GetByUserID(ctx, "user-1", 10, 5)
	if len(offset) != 0 {
		t.Errorf("Expected empty page past the end, got %d bookings", len(offset))
	}
}

func TestMemoryBookingRepository_ClaimPending(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	repo.Create(ctx, newBooking("booking-1", "user-1", time.Now()))

	claimed, err := repo.ClaimPending(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if claimed.ID != "booking-1" {
		t.Errorf("Unexpected booking: %+v", claimed)
	}

	// Only one claim can be held at a time
	if _, err := repo.ClaimPending(ctx, "booking-1"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("Expected ErrInvalidStateTransition for a held claim, got %v", err)
	}

	if err := repo.ReleaseClaim(ctx, "booking-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.ClaimPending(ctx, "booking-1"); err != nil {
		t.Errorf("Expected claim after release, got %v", err)
	}
}

func TestMemoryBookingRepository_ClaimPending_NonPending(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	if _, err := repo.ClaimPending(ctx, "missing"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("Expected ErrBookingNotFound, got %v", err)
	}

	booking := newBooking("booking-1", "user-1", time.Now())
	booking.Status = domain.BookingStatusConfirmed
	repo.Create(ctx, booking)

	if _, err := repo.ClaimPending(ctx, "booking-1"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("Expected ErrInvalidStateTransition for confirmed booking, got %v", err)
	}
}

func TestMemoryBookingRepository_UpdateClearsClaim(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	repo.Create(ctx, newBooking("booking-1", "user-1", time.Now()))

	claimed, err := repo.ClaimPending(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Persisting the outcome releases the claim
	if err := repo.Update(ctx, claimed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.ClaimPending(ctx, "booking-1"); err != nil {
		t.Errorf("Expected claim after update, got %v", err)
	}
}
