package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgredis "github.com/atlasvoyages/booking-engine/pkg/redis"
)

// rateCacheKey is where the shared rate snapshot lives in Redis so all
// instances render prices from the same table after a refresh.
const rateCacheKey = "currency:rates"

// StoreCached writes the current table snapshot to Redis
func StoreCached(ctx context.Context, client *pkgredis.Client, t *Table, ttl time.Duration) error {
	data, err := json.Marshal(t.Rates())
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}
	if err := client.Set(ctx, rateCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rates: %w", err)
	}
	return nil
}

// LoadCached replaces the table with the Redis snapshot, if one exists.
// A missing snapshot is not an error; the table keeps its current rates.
func LoadCached(ctx context.Context, client *pkgredis.Client, t *Table) error {
	data, err := client.Get(ctx, rateCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to load cached rates: %w", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return fmt.Errorf("failed to unmarshal cached rates: %w", err)
	}

	t.SetRates(rates)
	return nil
}
