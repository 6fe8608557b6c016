package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// StripeCardGateway implements the card variant on Stripe with the
// create-intent / confirm-intent handshake.
type StripeCardGateway struct {
	config *StripeCardConfig
}

// StripeCardConfig holds configuration for the Stripe card gateway
type StripeCardConfig struct {
	SecretKey   string
	Environment string // "test" or "live"
}

// NewStripeCardGateway creates a Stripe-backed card gateway
func NewStripeCardGateway(config *StripeCardConfig) (*StripeCardGateway, error) {
	if config == nil || config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	stripe.Key = config.SecretKey

	return &StripeCardGateway{config: config}, nil
}

// Capture creates a payment intent and confirms it with the card token
func (g *StripeCardGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		Metadata: map[string]string{"booking_id": req.BookingID},
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, classifyStripeError(err)
	}

	confirmParams := &stripe.PaymentIntentConfirmParams{}
	if req.CardToken != "" {
		confirmParams.PaymentMethod = stripe.String(req.CardToken)
	}
	confirmParams.Context = ctx

	pi, err = paymentintent.Confirm(pi.ID, confirmParams)
	if err != nil {
		return nil, classifyStripeError(err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, domain.NewGatewayRejected(fmt.Sprintf("payment intent not completed: %s", pi.Status))
	}

	return &Confirmation{
		Reference: pi.ID,
		Method:    domain.PaymentMethodCard,
	}, nil
}

// Method returns the payment method this variant handles
func (g *StripeCardGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodCard
}

// classifyStripeError maps an SDK error to the engine's payment error
// taxonomy: a structured gateway response means rejection, anything
// else means the gateway could not be reached.
func classifyStripeError(err error) *domain.PaymentError {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return domain.NewGatewayRejected(stripeErr.Msg)
	}
	return domain.NewGatewayUnreachable(err.Error())
}

var _ PaymentGateway = (*StripeCardGateway)(nil)
