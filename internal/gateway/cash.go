package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// CashOnPickupGateway confirms synchronously: payment is due in person
// at the pickup point, so no external call is made.
type CashOnPickupGateway struct{}

// NewCashOnPickupGateway creates a cash-on-pickup variant
func NewCashOnPickupGateway() *CashOnPickupGateway {
	return &CashOnPickupGateway{}
}

// Capture produces a confirmation carrying the pickup instruction
func (g *CashOnPickupGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	if strings.TrimSpace(req.PickupInstruction) == "" {
		return nil, domain.ErrMissingPickupInstruction
	}

	return &Confirmation{
		Reference:   fmt.Sprintf("cop_%s", uuid.New().String()[:8]),
		Method:      domain.PaymentMethodCashOnPickup,
		Instruction: req.PickupInstruction,
	}, nil
}

// Method returns the payment method this variant handles
func (g *CashOnPickupGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodCashOnPickup
}

// CashOnDeliveryGateway is like cash-on-pickup but requires a delivery
// address to send the tickets/vouchers to.
type CashOnDeliveryGateway struct{}

// NewCashOnDeliveryGateway creates a cash-on-delivery variant
func NewCashOnDeliveryGateway() *CashOnDeliveryGateway {
	return &CashOnDeliveryGateway{}
}

// Capture validates the delivery address and confirms synchronously
func (g *CashOnDeliveryGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, domain.ErrMissingDeliveryAddress
	}

	return &Confirmation{
		Reference:   fmt.Sprintf("cod_%s", uuid.New().String()[:8]),
		Method:      domain.PaymentMethodCashOnDelivery,
		Instruction: fmt.Sprintf("payment due on delivery to: %s", req.DeliveryAddress),
	}, nil
}

// Method returns the payment method this variant handles
func (g *CashOnDeliveryGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodCashOnDelivery
}

var (
	_ PaymentGateway = (*CashOnPickupGateway)(nil)
	_ PaymentGateway = (*CashOnDeliveryGateway)(nil)
)
