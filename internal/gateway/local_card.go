package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// LocalCardGateway captures through the domestic card processor. The
// processor works init-then-redirect: we register the order with a
// signed form post and hand the customer a hosted payment page URL.
type LocalCardGateway struct {
	config     *LocalCardConfig
	httpClient *http.Client
}

// LocalCardConfig holds configuration for the local card gateway
type LocalCardConfig struct {
	Endpoint string
	StoreID  string
	Secret   string
	Timeout  time.Duration
}

type localCardInitResponse struct {
	Approved   bool   `json:"approved"`
	SessionID  string `json:"session_id"`
	PaymentURL string `json:"payment_url"`
	ErrorMsg   string `json:"error_msg,omitempty"`
}

// NewLocalCardGateway creates a local card gateway
func NewLocalCardGateway(config *LocalCardConfig) (*LocalCardGateway, error) {
	if config == nil || config.Endpoint == "" || config.StoreID == "" {
		return nil, fmt.Errorf("local card endpoint and store id are required")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LocalCardGateway{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Capture registers the order with the processor and returns the
// hosted payment page URL as the confirmation instruction
func (g *LocalCardGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	form := url.Values{}
	form.Set("store_id", g.config.StoreID)
	form.Set("order_id", req.BookingID)
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency)
	if req.ReturnURL != "" {
		form.Set("return_url", req.ReturnURL)
	}
	form.Set("signature", g.sign(req.BookingID, req.AmountMinor, req.Currency))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.config.Endpoint+"/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build init request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewGatewayUnreachable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, domain.NewGatewayUnreachable(fmt.Sprintf("card processor returned %d", resp.StatusCode))
	}

	var session localCardInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, domain.NewGatewayUnreachable(fmt.Sprintf("unreadable processor response: %v", err))
	}

	if !session.Approved {
		msg := session.ErrorMsg
		if msg == "" {
			msg = "card session rejected by processor"
		}
		return nil, domain.NewGatewayRejected(msg)
	}

	return &Confirmation{
		Reference:   session.SessionID,
		Method:      domain.PaymentMethodLocalCard,
		Instruction: session.PaymentURL,
	}, nil
}

// Method returns the payment method this variant handles
func (g *LocalCardGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodLocalCard
}

// sign computes the HMAC the processor uses to authenticate the store
func (g *LocalCardGateway) sign(orderID string, amount int64, currency string) string {
	mac := hmac.New(sha256.New, []byte(g.config.Secret))
	fmt.Fprintf(mac, "%s|%s|%d|%s", g.config.StoreID, orderID, amount, currency)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ PaymentGateway = (*LocalCardGateway)(nil)
