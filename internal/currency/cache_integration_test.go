package currency

import (
	"context"
	"os"
	"testing"
	"time"

	pkgredis "github.com/atlasvoyages/booking-engine/pkg/redis"
)

func cacheTestClient(t *testing.T) *pkgredis.Client {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	cfg := pkgredis.DefaultConfig()
	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if password := os.Getenv("TEST_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	cfg.DB = 15 // dedicated test database

	client, err := pkgredis.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), rateCacheKey)
		client.Close()
	})
	return client
}

func TestRateSnapshotRoundTrip_Integration(t *testing.T) {
	client := cacheTestClient(t)
	ctx := context.Background()

	published := NewTable("MAD", map[string]float64{"MAD": 1, "EUR": 11.2})
	if err := StoreCached(ctx, client, published, time.Minute); err != nil {
		t.Fatalf("StoreCached failed: %v", err)
	}

	// A second instance starting from different config picks up the
	// published snapshot.
	subscriber := NewTable("MAD", DefaultRates())
	if err := LoadCached(ctx, client, subscriber); err != nil {
		t.Fatalf("LoadCached failed: %v", err)
	}

	rates := subscriber.Rates()
	if len(rates) != 2 {
		t.Errorf("Expected 2 rates after load, got %d", len(rates))
	}
	if rates["EUR"] != 11.2 {
		t.Errorf("Expected EUR rate 11.2, got %v", rates["EUR"])
	}
}

func TestLoadCached_NoSnapshot_Integration(t *testing.T) {
	client := cacheTestClient(t)
	ctx := context.Background()
	client.Del(ctx, rateCacheKey)

	table := NewTable("MAD", DefaultRates())
	before := len(table.Rates())

	// A missing snapshot is not an error and leaves the table alone
	if err := LoadCached(ctx, client, table); err != nil {
		t.Fatalf("LoadCached failed: %v", err)
	}
	if len(table.Rates()) != before {
		t.Errorf("Table changed without a snapshot: %d rates, want %d", len(table.Rates()), before)
	}
}
