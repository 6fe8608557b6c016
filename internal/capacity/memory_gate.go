package capacity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// MemoryGate is an in-process Gate for unit tests and local
// development. A single mutex makes check-and-increment atomic.
type MemoryGate struct {
	mu        sync.Mutex
	schedules map[string]*slot
}

type slot struct {
	capacity int
	booked   int
}

// NewMemoryGate creates an empty in-memory gate
func NewMemoryGate() *MemoryGate {
	return &MemoryGate{schedules: make(map[string]*slot)}
}

// SetSchedule seeds or replaces a schedule's capacity and booked count
func (g *MemoryGate) SetSchedule(scheduleID string, capacity, booked int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.schedules[scheduleID] = &slot{capacity: capacity, booked: booked}
}

// BookedCount returns the current booked count for a schedule
func (g *MemoryGate) BookedCount(scheduleID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.schedules[scheduleID]; ok {
		return s.booked
	}
	return 0
}

// Reserve atomically checks and increments the booked count
func (g *MemoryGate) Reserve(ctx context.Context, scheduleID string, tickets int) (*Reservation, error) {
	if tickets < 1 {
		return nil, domain.ErrInvalidTicketCount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.schedules[scheduleID]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}

	if s.booked+tickets > s.capacity {
		return nil, &domain.CapacityError{
			ScheduleID: scheduleID,
			Requested:  tickets,
			Remaining:  s.capacity - s.booked,
		}
	}

	s.booked += tickets
	return &Reservation{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Tickets:    tickets,
	}, nil
}

// Release decrements the booked count, flooring at zero
func (g *MemoryGate) Release(ctx context.Context, reservation *Reservation) error {
	if reservation == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.schedules[reservation.ScheduleID]
	if !ok {
		return domain.ErrScheduleNotFound
	}

	s.booked -= reservation.Tickets
	if s.booked < 0 {
		s.booked = 0
	}
	return nil
}

var _ Gate = (*MemoryGate)(nil)
