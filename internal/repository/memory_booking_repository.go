package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// MemoryBookingRepository implements BookingRepository in memory. It is
// used by tests and by single-node development instances.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	claims   map[string]struct{}
}

// NewMemoryBookingRepository creates an empty in-memory repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]*domain.Booking),
		claims:   make(map[string]struct{}),
	}
}

// Create inserts a new booking record
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return ErrBookingAlreadyExists
	}

	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

// GetByID retrieves a booking by its ID
func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	copied := *booking
	return &copied, nil
}

// GetByUserID retrieves bookings for a user, newest first
func (r *MemoryBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			copied := *b
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

// Update persists the current state of an existing booking
func (r *MemoryBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; !ok {
		return domain.ErrBookingNotFound
	}

	copied := *booking
	r.bookings[booking.ID] = &copied
	delete(r.claims, booking.ID)
	return nil
}

// ClaimPending atomically claims a pending booking for one in-flight
// transition
func (r *MemoryBookingRepository) ClaimPending(ctx context.Context, bookingID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidStateTransition
	}
	if _, held := r.claims[bookingID]; held {
		return nil, domain.ErrInvalidStateTransition
	}

	r.claims[bookingID] = struct{}{}
	copied := *booking
	return &copied, nil
}

// ReleaseClaim clears a claim without changing the booking
func (r *MemoryBookingRepository) ReleaseClaim(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.claims, bookingID)
	return nil
}

var _ BookingRepository = (*MemoryBookingRepository)(nil)
