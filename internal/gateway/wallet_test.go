package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

func walletServer(t *testing.T, status string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req walletChargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Unreadable charge request: %v", err)
		}
		if req.Amount != 24000 || req.Currency != "MAD" {
			t.Errorf("Unexpected charge: %+v", req)
		}
		json.NewEncoder(w).Encode(walletChargeResponse{
			Status:      status,
			ChargeID:    "wl_123",
			RedirectURL: "https://wallet.example/pay/wl_123",
			Reason:      "insufficient balance",
		})
	}))
}

func TestWalletGateway_Settled(t *testing.T) {
	srv := walletServer(t, "settled")
	defer srv.Close()

	gw, err := NewWalletGateway(&WalletConfig{Endpoint: srv.URL, MerchantID: "m-1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	conf, err := gw.Capture(context.Background(), captureReq())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.Reference != "wl_123" {
		t.Errorf("Expected charge id reference, got %q", conf.Reference)
	}
}

func TestWalletGateway_Redirect(t *testing.T) {
	srv := walletServer(t, "redirect")
	defer srv.Close()

	gw, _ := NewWalletGateway(&WalletConfig{Endpoint: srv.URL, MerchantID: "m-1"})

	conf, err := gw.Capture(context.Background(), captureReq())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.Instruction != "https://wallet.example/pay/wl_123" {
		t.Errorf("Expected redirect URL instruction, got %q", conf.Instruction)
	}
	if !conf.PendingVerification {
		t.Error("A redirect is not settled; confirmation must be pending verification")
	}
}

func TestWalletGateway_Declined(t *testing.T) {
	srv := walletServer(t, "declined")
	defer srv.Close()

	gw, _ := NewWalletGateway(&WalletConfig{Endpoint: srv.URL, MerchantID: "m-1"})

	_, err := gw.Capture(context.Background(), captureReq())
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Expected *domain.PaymentError, got %v", err)
	}
	if payErr.Kind != domain.GatewayRejected {
		t.Errorf("Expected GatewayRejected, got %s", payErr.Kind)
	}
	if payErr.Reason != "insufficient balance" {
		t.Errorf("Expected provider reason, got %q", payErr.Reason)
	}
}

func TestWalletGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	srv.Close() // unreachable endpoint

	gw, _ := NewWalletGateway(&WalletConfig{Endpoint: srv.URL, MerchantID: "m-1"})

	_, err := gw.Capture(context.Background(), captureReq())
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Expected *domain.PaymentError, got %v", err)
	}
	if payErr.Kind != domain.GatewayUnreachable {
		t.Errorf("Expected GatewayUnreachable, got %s", payErr.Kind)
	}
}

func TestWalletGateway_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw, _ := NewWalletGateway(&WalletConfig{Endpoint: srv.URL, MerchantID: "m-1"})

	_, err := gw.Capture(context.Background(), captureReq())
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Expected *domain.PaymentError, got %v", err)
	}
	if payErr.Kind != domain.GatewayUnreachable {
		t.Errorf("Expected GatewayUnreachable for 5xx, got %s", payErr.Kind)
	}
}

func TestLocalCardGateway_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("Unreadable form: %v", err)
		}
		if r.PostFormValue("signature") == "" {
			t.Error("Expected a request signature")
		}
		json.NewEncoder(w).Encode(localCardInitResponse{
			Approved:   true,
			SessionID:  "lc_456",
			PaymentURL: "https://cards.example/pay/lc_456",
		})
	}))
	defer srv.Close()

	gw, err := NewLocalCardGateway(&LocalCardConfig{Endpoint: srv.URL, StoreID: "store-1", Secret: "s3cret"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	conf, err := gw.Capture(context.Background(), captureReq())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if conf.Reference != "lc_456" {
		t.Errorf("Expected session reference, got %q", conf.Reference)
	}
	if conf.Instruction != "https://cards.example/pay/lc_456" {
		t.Errorf("Expected hosted page instruction, got %q", conf.Instruction)
	}
}

func TestLocalCardGateway_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(localCardInitResponse{
			Approved: false,
			ErrorMsg: "store not allowed",
		})
	}))
	defer srv.Close()

	gw, _ := NewLocalCardGateway(&LocalCardConfig{Endpoint: srv.URL, StoreID: "store-1", Secret: "s3cret"})

	_, err := gw.Capture(context.Background(), captureReq())
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("Expected *domain.PaymentError, got %v", err)
	}
	if payErr.Kind != domain.GatewayRejected {
		t.Errorf("Expected GatewayRejected, got %s", payErr.Kind)
	}
}
