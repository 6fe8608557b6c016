package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// WalletGateway captures through a redirect-style wallet provider. One
// POST initiates the charge; the provider either settles immediately
// (stored balance) or returns a redirect URL the customer must follow.
type WalletGateway struct {
	config     *WalletConfig
	httpClient *http.Client
}

// WalletConfig holds configuration for the wallet gateway
type WalletConfig struct {
	Endpoint   string
	MerchantID string
	Timeout    time.Duration
}

type walletChargeRequest struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	ReturnURL  string `json:"return_url,omitempty"`
}

type walletChargeResponse struct {
	Status      string `json:"status"` // "settled" | "redirect" | "declined"
	ChargeID    string `json:"charge_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// NewWalletGateway creates a wallet gateway
func NewWalletGateway(config *WalletConfig) (*WalletGateway, error) {
	if config == nil || config.Endpoint == "" {
		return nil, fmt.Errorf("wallet endpoint is required")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WalletGateway{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Capture posts a single charge request to the wallet provider
func (g *WalletGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	body, err := json.Marshal(walletChargeRequest{
		MerchantID: g.config.MerchantID,
		OrderID:    req.BookingID,
		Amount:     req.AmountMinor,
		Currency:   req.Currency,
		ReturnURL:  req.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode wallet charge: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Endpoint+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewGatewayUnreachable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, domain.NewGatewayUnreachable(fmt.Sprintf("wallet provider returned %d", resp.StatusCode))
	}

	var charge walletChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, domain.NewGatewayUnreachable(fmt.Sprintf("unreadable wallet response: %v", err))
	}

	switch charge.Status {
	case "settled":
		return &Confirmation{
			Reference: charge.ChargeID,
			Method:    domain.PaymentMethodWallet,
		}, nil
	case "redirect":
		// The customer still has to follow the redirect and pay, so the
		// booking must not confirm until settlement is verified.
		return &Confirmation{
			Reference:           charge.ChargeID,
			Method:              domain.PaymentMethodWallet,
			Instruction:         charge.RedirectURL,
			PendingVerification: true,
		}, nil
	default:
		reason := charge.Reason
		if reason == "" {
			reason = fmt.Sprintf("wallet charge declined (status %q)", charge.Status)
		}
		return nil, domain.NewGatewayRejected(reason)
	}
}

// Method returns the payment method this variant handles
func (g *WalletGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodWallet
}

var _ PaymentGateway = (*WalletGateway)(nil)
