package currency

import (
	"errors"
	"math"
	"testing"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

func TestConvert(t *testing.T) {
	table := NewTable("MAD", map[string]float64{
		"MAD": 1.0,
		"EUR": 0.093,
		"USD": 0.10,
	})

	tests := []struct {
		name    string
		amount  float64
		from    string
		to      string
		want    float64
		wantErr error
	}{
		{name: "base to foreign", amount: 100, from: "MAD", to: "USD", want: 10},
		{name: "foreign to base", amount: 10, from: "USD", to: "MAD", want: 100},
		{name: "same currency", amount: 250, from: "EUR", to: "EUR", want: 250},
		{name: "zero amount", amount: 0, from: "MAD", to: "EUR", want: 0},
		{name: "unknown source", amount: 100, from: "XXX", to: "MAD", wantErr: domain.ErrUnsupportedCurrency},
		{name: "unknown target", amount: 100, from: "MAD", to: "XXX", wantErr: domain.ErrUnsupportedCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Convert(tt.amount, tt.from, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Convert(%v, %s, %s) = %v, want %v", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	table := NewTable("MAD", DefaultRates())

	amounts := []float64{1, 99.99, 1250, 0.01}
	codes := []string{"EUR", "USD", "GBP"}

	for _, amount := range amounts {
		for _, code := range codes {
			there, err := table.Convert(amount, "MAD", code)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			back, err := table.Convert(there, code, "MAD")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(back-amount) > 1e-9 {
				t.Errorf("Round trip MAD->%s->MAD of %v produced %v", code, amount, back)
			}
		}
	}
}

func TestConvert_NonFinite(t *testing.T) {
	table := NewTable("MAD", DefaultRates())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := table.Convert(v, "MAD", "EUR")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("Expected 0 for non-finite input, got %v", got)
		}
	}
}

func TestFormat(t *testing.T) {
	table := NewTable("MAD", DefaultRates())

	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{amount: 1250.4, code: "MAD", want: "1250 MAD"},
		{amount: 116.25, code: "EUR", want: "116.25 EUR"},
		{amount: 10, code: "USD", want: "10.00 USD"},
	}

	for _, tt := range tests {
		if got := table.Format(tt.amount, tt.code); got != tt.want {
			t.Errorf("Format(%v, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestSetRates(t *testing.T) {
	table := NewTable("MAD", DefaultRates())

	table.SetRates(map[string]float64{
		"EUR": 0.095,
		"BAD": -1, // discarded
	})

	rates := table.Rates()
	if rates["MAD"] != 1.0 {
		t.Error("Base rate must stay pinned at 1")
	}
	if rates["EUR"] != 0.095 {
		t.Errorf("Expected EUR rate 0.095, got %v", rates["EUR"])
	}
	if _, ok := rates["BAD"]; ok {
		t.Error("Non-positive rates must be discarded")
	}
	if table.Supported("USD") {
		t.Error("SetRates replaces the table; USD should be gone")
	}
}
