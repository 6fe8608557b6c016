package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlasvoyages/booking-engine/internal/domain"
)

// BankTransferGateway confirms synchronously but flags the result as
// pending manual verification: the booking stays Pending until an
// operator confirms receipt of funds. There is no automatic expiry.
type BankTransferGateway struct {
	// reference is rendered into the transfer instruction so the
	// operator can match incoming funds to the booking.
	reference string
}

// NewBankTransferGateway creates a bank-transfer variant
func NewBankTransferGateway(reference string) *BankTransferGateway {
	if reference == "" {
		reference = "BOOKING"
	}
	return &BankTransferGateway{reference: reference}
}

// Capture produces a pending-verification confirmation
func (g *BankTransferGateway) Capture(ctx context.Context, req *CaptureRequest) (*Confirmation, error) {
	ref := fmt.Sprintf("bt_%s", uuid.New().String()[:8])
	return &Confirmation{
		Reference:           ref,
		Method:              domain.PaymentMethodBankTransfer,
		PendingVerification: true,
		Instruction: fmt.Sprintf(
			"transfer the total amount with reference %s/%s; the booking is held until funds are verified",
			g.reference, ref,
		),
	}, nil
}

// Method returns the payment method this variant handles
func (g *BankTransferGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodBankTransfer
}

var _ PaymentGateway = (*BankTransferGateway)(nil)
