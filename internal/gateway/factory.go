package gateway

import (
	"fmt"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// FactoryConfig selects and configures the payment method variants
type FactoryConfig struct {
	// CardGateway picks the card implementation: "stripe" or "mock"
	CardGateway string

	Stripe    *StripeCardConfig
	Wallet    *WalletConfig
	LocalCard *LocalCardConfig

	// BankTransferReference prefixes the transfer instruction
	BankTransferReference string

	Mock *MockConfig
}

// Dispatcher routes a capture to the variant for its payment method
type Dispatcher struct {
	gateways map[domain.PaymentMethod]PaymentGateway
}

// NewDispatcher builds every configured variant and indexes them by
// payment method. Methods whose provider is not configured fall back
// to the mock variant, so a development instance accepts all methods.
func NewDispatcher(cfg *FactoryConfig) (*Dispatcher, error) {
	if cfg == nil {
		cfg = &FactoryConfig{}
	}

	gateways := make(map[domain.PaymentMethod]PaymentGateway)

	switch cfg.CardGateway {
	case "stripe":
		card, err := NewStripeCardGateway(cfg.Stripe)
		if err != nil {
			return nil, fmt.Errorf("failed to create stripe gateway: %w", err)
		}
		gateways[domain.PaymentMethodCard] = card
	case "mock", "":
		gateways[domain.PaymentMethodCard] = NewMockGateway(domain.PaymentMethodCard, cfg.Mock)
	default:
		return nil, fmt.Errorf("unknown card gateway: %s", cfg.CardGateway)
	}

	if cfg.Wallet != nil && cfg.Wallet.Endpoint != "" {
		wallet, err := NewWalletGateway(cfg.Wallet)
		if err != nil {
			return nil, fmt.Errorf("failed to create wallet gateway: %w", err)
		}
		gateways[domain.PaymentMethodWallet] = wallet
	} else {
		gateways[domain.PaymentMethodWallet] = NewMockGateway(domain.PaymentMethodWallet, cfg.Mock)
	}

	if cfg.LocalCard != nil && cfg.LocalCard.Endpoint != "" {
		local, err := NewLocalCardGateway(cfg.LocalCard)
		if err != nil {
			return nil, fmt.Errorf("failed to create local card gateway: %w", err)
		}
		gateways[domain.PaymentMethodLocalCard] = local
	} else {
		gateways[domain.PaymentMethodLocalCard] = NewMockGateway(domain.PaymentMethodLocalCard, cfg.Mock)
	}

	gateways[domain.PaymentMethodCashOnPickup] = NewCashOnPickupGateway()
	gateways[domain.PaymentMethodCashOnDelivery] = NewCashOnDeliveryGateway()
	gateways[domain.PaymentMethodBankTransfer] = NewBankTransferGateway(cfg.BankTransferReference)

	return &Dispatcher{gateways: gateways}, nil
}

// ForMethod returns the variant for a payment method
func (d *Dispatcher) ForMethod(method domain.PaymentMethod) (PaymentGateway, error) {
	gw, ok := d.gateways[method]
	if !ok {
		return nil, domain.ErrInvalidPaymentMethod
	}
	return gw, nil
}

// Register overrides the variant for a method (used by tests and by
// deployments that plug in a custom provider).
func (d *Dispatcher) Register(gw PaymentGateway) {
	d.gateways[gw.Method()] = gw
}
