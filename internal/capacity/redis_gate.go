package capacity

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	pkgredis "github.com/atlasvoyages/booking-engine/pkg/redis"
)

//go:embed scripts/reserve.lua
var reserveScript string

//go:embed scripts/release.lua
var releaseScript string

const (
	scriptReserve = "capacity_reserve"
	scriptRelease = "capacity_release"
)

// RedisGate implements Gate on Redis using Lua scripts, so the
// check-and-increment is atomic across all server instances.
type RedisGate struct {
	client *pkgredis.Client
}

// NewRedisGate creates a RedisGate
func NewRedisGate(client *pkgredis.Client) *RedisGate {
	return &RedisGate{client: client}
}

// LoadScripts preloads the Lua scripts into Redis
func (g *RedisGate) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptReserve: reserveScript,
		scriptRelease: releaseScript,
	}
	for name, script := range scripts {
		if _, err := g.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}
	return nil
}

func capacityKey(scheduleID string) string {
	return fmt.Sprintf("schedule:capacity:%s", scheduleID)
}

func bookedKey(scheduleID string) string {
	return fmt.Sprintf("schedule:booked:%s", scheduleID)
}

// SetSchedule seeds a schedule's capacity and booked count (for
// initialization and catalog sync).
func (g *RedisGate) SetSchedule(ctx context.Context, scheduleID string, capacity, booked int) error {
	if err := g.client.Set(ctx, capacityKey(scheduleID), capacity, 0).Err(); err != nil {
		return fmt.Errorf("failed to set schedule capacity: %w", err)
	}
	if err := g.client.Set(ctx, bookedKey(scheduleID), booked, 0).Err(); err != nil {
		return fmt.Errorf("failed to set schedule booked count: %w", err)
	}
	return nil
}

// Reserve atomically checks and increments the booked count
func (g *RedisGate) Reserve(ctx context.Context, scheduleID string, tickets int) (*Reservation, error) {
	if tickets < 1 {
		return nil, domain.ErrInvalidTicketCount
	}

	keys := []string{capacityKey(scheduleID), bookedKey(scheduleID)}
	result := g.client.EvalWithFallback(ctx, scriptReserve, reserveScript, keys, tickets)
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to execute reserve script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to parse reserve script result: %w", err)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("unexpected reserve script result length: %d", len(values))
	}

	status, _ := values[0].(int64)
	detail, _ := values[1].(int64)

	switch status {
	case 1:
		return &Reservation{
			ID:         uuid.New().String(),
			ScheduleID: scheduleID,
			Tickets:    tickets,
		}, nil
	case 0:
		return nil, &domain.CapacityError{
			ScheduleID: scheduleID,
			Requested:  tickets,
			Remaining:  int(detail),
		}
	default:
		return nil, domain.ErrScheduleNotFound
	}
}

// Release decrements the booked count for a reservation
func (g *RedisGate) Release(ctx context.Context, reservation *Reservation) error {
	if reservation == nil {
		return nil
	}

	keys := []string{bookedKey(reservation.ScheduleID)}
	result := g.client.EvalWithFallback(ctx, scriptRelease, releaseScript, keys, reservation.Tickets)
	if result.Err() != nil {
		return fmt.Errorf("failed to execute release script: %w", result.Err())
	}
	return nil
}

var _ Gate = (*RedisGate)(nil)
