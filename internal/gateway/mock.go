package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// MockGateway simulates a payment provider for development and load
// testing. It can stand in for any method that normally reaches an
// external provider.
type MockGateway struct {
	method domain.PaymentMethod
	config *MockConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// MockConfig holds configuration for the mock gateway
type MockConfig struct {
	SuccessRate float64 // 0.0 - 1.0, defaults to 0.95
	DelayMs     int     // simulated provider latency
}

// NewMockGateway creates a mock gateway for the given payment method
func NewMockGateway(method domain.PaymentMethod, config *MockConfig) *MockGateway {
	if config == nil {
		config = &MockConfig{}
	}
	if config.SuccessRate <= 0 || config.SuccessRate > 1 {
		config.SuccessRate = 0.95
	}
	return &MockGateway{
		method: method,
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Capture simulates a provider round-trip
func (g *MockGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	if g.config.DelayMs > 0 {
		select {
		case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		case <-ctx.Done():
			return nil, domain.NewGatewayUnreachable(ctx.Err().Error())
		}
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll >= g.config.SuccessRate {
		return nil, domain.NewGatewayRejected("mock gateway declined the payment")
	}

	return &Confirmation{
		Reference: fmt.Sprintf("mock_%s", uuid.New().String()[:8]),
		Method:    g.method,
	}, nil
}

// Method returns the payment method this variant handles
func (g *MockGateway) Method() domain.PaymentMethod {
	return g.method
}

var _ PaymentGateway = (*MockGateway)(nil)
