// Package di wires infrastructure, repositories, services and handlers
package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atlasvoyages/booking-engine/internal/capacity"
	"github.com/atlasvoyages/booking-engine/internal/catalog"
	"github.com/atlasvoyages/booking-engine/internal/currency"
	"github.com/atlasvoyages/booking-engine/internal/gateway"
	"github.com/atlasvoyages/booking-engine/internal/handler"
	"github.com/atlasvoyages/booking-engine/internal/notifier"
	"github.com/atlasvoyages/booking-engine/internal/pricing"
	"github.com/atlasvoyages/booking-engine/internal/repository"
	"github.com/atlasvoyages/booking-engine/internal/service"
	"github.com/atlasvoyages/booking-engine/pkg/config"
	"github.com/atlasvoyages/booking-engine/pkg/database"
	"github.com/atlasvoyages/booking-engine/pkg/kafka"
	"github.com/atlasvoyages/booking-engine/pkg/logger"
	"github.com/atlasvoyages/booking-engine/pkg/redis"
)

// Container holds all dependencies for the booking engine
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	Producer *kafka.Producer

	// Core components
	Table      *currency.Table
	Calculator *pricing.Calculator
	Gate       capacity.Gate
	Dispatcher *gateway.Dispatcher

	// Repositories
	BookingRepo repository.BookingRepository
	Catalog     catalog.Catalog

	// Services
	Checkout *service.CheckoutService

	// Handlers
	BookingHandler *handler.BookingHandler
	HealthHandler  *handler.HealthHandler
}

// rateCacheTTL bounds how long a stale rate snapshot can outlive the
// instance that published it
const rateCacheTTL = 24 * time.Hour

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config   *config.Config
	DB       *database.PostgresDB
	Redis    *redis.Client
	Producer *kafka.Producer
}

// NewContainer creates a new dependency injection container. The
// capacity gate and repository pick the strongest backend available:
// Redis gate when Redis is up, else Postgres, else in-memory.
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Producer: cfg.Producer,
	}

	c.Table = currency.NewTable(cfg.Config.Currency.Base, cfg.Config.Currency.Rates)
	if c.Redis != nil {
		// Pick up a refreshed rate snapshot left by another instance,
		// then re-publish so late-joining instances warm from the same
		// table this one is serving.
		if err := currency.LoadCached(ctx, c.Redis, c.Table); err != nil {
			logger.Warn("failed to load cached currency rates", zap.Error(err))
		} else if err := currency.StoreCached(ctx, c.Redis, c.Table, rateCacheTTL); err != nil {
			logger.Warn("failed to publish currency rate snapshot", zap.Error(err))
		}
	}
	c.Calculator = pricing.NewCalculator(c.Table.Base())

	switch {
	case c.Redis != nil:
		gate := capacity.NewRedisGate(c.Redis)
		if err := gate.LoadScripts(ctx); err != nil {
			return nil, fmt.Errorf("failed to load capacity scripts: %w", err)
		}
		c.Gate = gate
	case c.DB != nil:
		c.Gate = capacity.NewPostgresGate(c.DB)
	default:
		c.Gate = capacity.NewMemoryGate()
	}

	if c.DB != nil {
		c.BookingRepo = repository.NewPostgresBookingRepository(c.DB)
		c.Catalog = catalog.NewPostgresCatalog(c.DB)
	} else {
		c.BookingRepo = repository.NewMemoryBookingRepository()
		c.Catalog = catalog.NewMemoryCatalog()
	}

	dispatcher, err := gateway.NewDispatcher(paymentFactoryConfig(&cfg.Config.Payment))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment dispatcher: %w", err)
	}
	c.Dispatcher = dispatcher

	var events notifier.Notifier = notifier.NewNoopNotifier()
	if c.Producer != nil {
		events = notifier.NewKafkaNotifier(c.Producer, cfg.Config.Kafka.Topic)
	}

	c.Checkout = service.NewCheckoutService(
		c.BookingRepo, c.Catalog, c.Gate, c.Dispatcher, c.Calculator, c.Table, events,
	)

	c.BookingHandler = handler.NewBookingHandler(c.Checkout)
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)

	return c, nil
}

func paymentFactoryConfig(p *config.PaymentConfig) *gateway.FactoryConfig {
	fc := &gateway.FactoryConfig{
		CardGateway:           p.CardGateway,
		BankTransferReference: p.BankTransferReference,
		Mock: &gateway.MockConfig{
			SuccessRate: p.MockSuccessRate,
			DelayMs:     p.MockDelayMs,
		},
	}
	if p.StripeSecretKey != "" {
		fc.Stripe = &gateway.StripeCardConfig{
			SecretKey:   p.StripeSecretKey,
			Environment: p.StripeEnv,
		}
	}
	if p.WalletEndpoint != "" {
		fc.Wallet = &gateway.WalletConfig{
			Endpoint:   p.WalletEndpoint,
			MerchantID: p.WalletMerchantID,
		}
	}
	if p.LocalCardEndpoint != "" {
		fc.LocalCard = &gateway.LocalCardConfig{
			Endpoint: p.LocalCardEndpoint,
			StoreID:  p.LocalCardStoreID,
			Secret:   p.LocalCardSecret,
		}
	}
	return fc
}
