package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

func captureReq() *CaptureRequest {
	return &CaptureRequest{
		BookingID:   "booking-1",
		UserID:      "user-1",
		AmountMinor: 24000,
		Currency:    "MAD",
	}
}

func TestMockGateway_Capture_Success(t *testing.T) {
	gw := NewMockGateway(domain.PaymentMethodCard, &MockConfig{SuccessRate: 1.0})
	ctx := context.Background()

	conf, err := gw.Capture(ctx, captureReq())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.Reference == "" {
		t.Error("Expected a payment reference")
	}
	if conf.Method != domain.PaymentMethodCard {
		t.Errorf("Expected method card, got %s", conf.Method)
	}
	if conf.PendingVerification {
		t.Error("Mock confirmations are never pending verification")
	}
}

func TestMockGateway_Capture_Rejection(t *testing.T) {
	// A success rate above 1 is invalid and falls back to the default,
	// so force rejections with a rate just above zero over many rolls.
	gw := NewMockGateway(domain.PaymentMethodCard, &MockConfig{SuccessRate: 0.0001})
	ctx := context.Background()

	sawRejection := false
	for i := 0; i < 100; i++ {
		_, err := gw.Capture(ctx, captureReq())
		if err == nil {
			continue
		}
		var payErr *domain.PaymentError
		if !errors.As(err, &payErr) {
			t.Fatalf("Expected *domain.PaymentError, got %v", err)
		}
		if payErr.Kind != domain.GatewayRejected {
			t.Fatalf("Expected GatewayRejected, got %s", payErr.Kind)
		}
		sawRejection = true
		break
	}
	if !sawRejection {
		t.Error("Expected at least one rejection at 0.01% success rate")
	}
}

func TestCashOnPickupGateway(t *testing.T) {
	gw := NewCashOnPickupGateway()
	ctx := context.Background()

	req := captureReq()
	req.PickupInstruction = "Meet at the medina gate at 08:30"

	conf, err := gw.Capture(ctx, req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.Instruction != req.PickupInstruction {
		t.Errorf("Expected instruction passed through, got %q", conf.Instruction)
	}
	if !strings.HasPrefix(conf.Reference, "cop_") {
		t.Errorf("Expected cop_ reference, got %q", conf.Reference)
	}
}

func TestCashOnPickupGateway_MissingInstruction(t *testing.T) {
	gw := NewCashOnPickupGateway()

	req := captureReq()
	req.PickupInstruction = "   "

	_, err := gw.Capture(context.Background(), req)
	if !errors.Is(err, domain.ErrMissingPickupInstruction) {
		t.Errorf("Expected ErrMissingPickupInstruction, got %v", err)
	}
}

func TestCashOnDeliveryGateway(t *testing.T) {
	gw := NewCashOnDeliveryGateway()
	ctx := context.Background()

	req := captureReq()
	req.DeliveryAddress = "12 Rue des Consuls, Rabat"

	conf, err := gw.Capture(ctx, req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(conf.Instruction, req.DeliveryAddress) {
		t.Errorf("Expected instruction to carry the address, got %q", conf.Instruction)
	}
}

func TestCashOnDeliveryGateway_MissingAddress(t *testing.T) {
	gw := NewCashOnDeliveryGateway()

	for _, address := range []string{"", "   "} {
		req := captureReq()
		req.DeliveryAddress = address

		_, err := gw.Capture(context.Background(), req)
		if !errors.Is(err, domain.ErrMissingDeliveryAddress) {
			t.Errorf("address %q: expected ErrMissingDeliveryAddress, got %v", address, err)
		}
	}
}

func TestBankTransferGateway(t *testing.T) {
	gw := NewBankTransferGateway("ATLAS")
	ctx := context.Background()

	conf, err := gw.Capture(ctx, captureReq())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !conf.PendingVerification {
		t.Error("Bank transfer confirmations must be pending verification")
	}
	if !strings.Contains(conf.Instruction, "ATLAS") {
		t.Errorf("Expected instruction to carry the transfer reference, got %q", conf.Instruction)
	}
	if !strings.HasPrefix(conf.Reference, "bt_") {
		t.Errorf("Expected bt_ reference, got %q", conf.Reference)
	}
}

func TestDispatcher(t *testing.T) {
	d, err := NewDispatcher(&FactoryConfig{
		CardGateway:           "mock",
		BankTransferReference: "ATLAS",
		Mock:                  &MockConfig{SuccessRate: 1.0},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	methods := []domain.PaymentMethod{
		domain.PaymentMethodCard,
		domain.PaymentMethodWallet,
		domain.PaymentMethodLocalCard,
		domain.PaymentMethodCashOnPickup,
		domain.PaymentMethodCashOnDelivery,
		domain.PaymentMethodBankTransfer,
	}
	for _, m := range methods {
		gw, err := d.ForMethod(m)
		if err != nil {
			t.Fatalf("ForMethod(%s): unexpected error: %v", m, err)
		}
		if gw.Method() != m {
			t.Errorf("ForMethod(%s) returned a %s variant", m, gw.Method())
		}
	}

	if _, err := d.ForMethod("cheque"); !errors.Is(err, domain.ErrInvalidPaymentMethod) {
		t.Errorf("Expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestDispatcher_UnknownCardGateway(t *testing.T) {
	if _, err := NewDispatcher(&FactoryConfig{CardGateway: "square"}); err == nil {
		t.Error("Expected error for unknown card gateway")
	}
}

func TestDispatcher_Register(t *testing.T) {
	d, err := NewDispatcher(&FactoryConfig{Mock: &MockConfig{SuccessRate: 1.0}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	custom := NewMockGateway(domain.PaymentMethodWallet, &MockConfig{SuccessRate: 1.0})
	d.Register(custom)

	gw, err := d.ForMethod(domain.PaymentMethodWallet)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gw != PaymentGateway(custom) {
		t.Error("Expected the registered gateway to be returned")
	}
}
