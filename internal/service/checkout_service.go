// Package service orchestrates the checkout flow: pricing, capacity,
// payment capture and the booking record lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlasvoyages/booking-engine/internal/capacity"
	"github.com/atlasvoyages/booking-engine/internal/catalog"
	"github.com/atlasvoyages/booking-engine/internal/currency"
	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/internal/gateway"
	"github.com/atlasvoyages/booking-engine/internal/money"
	"github.com/atlasvoyages/booking-engine/internal/notifier"
	"github.com/atlasvoyages/booking-engine/internal/pricing"
	"github.com/atlasvoyages/booking-engine/internal/repository"
	"github.com/atlasvoyages/booking-engine/pkg/logger"
)

// QuoteInput asks for a price breakdown without creating a booking
type QuoteInput struct {
	ProductID   string
	ScheduleID  string
	TicketCount int
	AddOnIDs    []string
	Currency    string
}

// Quote is a priced breakdown converted to the requested currency
type Quote struct {
	Breakdown    *pricing.Breakdown
	Currency     string
	UnitPrice    float64
	BaseTotal    float64
	AddOnTotal   float64
	Subtotal     float64
	DisplayTotal string
}

// CheckoutInput creates a booking and attempts payment capture
type CheckoutInput struct {
	ProductID   string
	ScheduleID  string
	UserID      string
	TicketCount int
	AddOnIDs    []string
	Currency    string
	Method      domain.PaymentMethod

	Payment PaymentDetails
}

// PaymentDetails carries the method-specific capture inputs
type PaymentDetails struct {
	CardToken         string
	ReturnURL         string
	PickupInstruction string
	DeliveryAddress   string
}

// CheckoutResult is a booking plus the capture outcome metadata that
// is not persisted on the record (customer-facing instruction).
type CheckoutResult struct {
	Booking     *domain.Booking
	Instruction string
}

// CheckoutService drives the booking flow end to end
type CheckoutService struct {
	repo       repository.BookingRepository
	catalog    catalog.Catalog
	gate       capacity.Gate
	dispatcher *gateway.Dispatcher
	calculator *pricing.Calculator
	table      *currency.Table
	notifier   notifier.Notifier
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(
	repo repository.BookingRepository,
	cat catalog.Catalog,
	gate capacity.Gate,
	dispatcher *gateway.Dispatcher,
	calculator *pricing.Calculator,
	table *currency.Table,
	events notifier.Notifier,
) *CheckoutService {
	if events == nil {
		events = notifier.NewNoopNotifier()
	}
	return &CheckoutService{
		repo:       repo,
		catalog:    cat,
		gate:       gate,
		dispatcher: dispatcher,
		calculator: calculator,
		table:      table,
		notifier:   events,
	}
}

// Quote prices a prospective booking in the requested currency without
// reserving capacity or touching payment.
func (s *CheckoutService) Quote(ctx context.Context, input *QuoteInput) (*Quote, error) {
	if !s.table.Supported(input.Currency) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, input.Currency)
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.catalog.GetSchedule(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.ProductID != product.ID {
		return nil, domain.ErrScheduleNotFound
	}

	breakdown, err := s.calculator.ComputeBreakdown(product, schedule, input.TicketCount, input.AddOnIDs)
	if err != nil {
		return nil, err
	}

	return s.convertBreakdown(breakdown, input.Currency)
}

// Checkout reserves capacity, freezes the total and attempts capture.
// On capture failure the booking is marked Failed and capacity is
// released before the error is returned; the Failed record is kept.
func (s *CheckoutService) Checkout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error) {
	if !input.Method.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}
	if !s.table.Supported(input.Currency) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, input.Currency)
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.catalog.GetSchedule(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.ProductID != product.ID {
		return nil, domain.ErrScheduleNotFound
	}

	now := time.Now().UTC()
	if schedule.IsPast(now) {
		return nil, domain.ErrSchedulePast
	}

	// Reserve before pricing so an oversold schedule fails fast and a
	// pricing failure can give the spots straight back.
	reservation, err := s.gate.Reserve(ctx, schedule.ID, input.TicketCount)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.calculator.ComputeBreakdown(product, schedule, input.TicketCount, input.AddOnIDs)
	if err != nil {
		s.releaseQuietly(ctx, reservation)
		return nil, err
	}

	subtotal, err := s.table.Convert(breakdown.Subtotal.Decimal(), s.table.Base(), input.Currency)
	if err != nil {
		s.releaseQuietly(ctx, reservation)
		return nil, err
	}
	total := money.FromDecimal(subtotal, input.Currency)

	booking := &domain.Booking{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		ScheduleID:    schedule.ID,
		ScheduleDate:  schedule.Date,
		UserID:        input.UserID,
		TicketCount:   input.TicketCount,
		Method:        input.Method,
		Status:        domain.BookingStatusPending,
		TotalMinor:    total.Minor,
		Currency:      total.Currency,
		ReservationID: reservation.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := booking.Validate(); err != nil {
		s.releaseQuietly(ctx, reservation)
		return nil, err
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.releaseQuietly(ctx, reservation)
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	return s.capture(ctx, booking, &input.Payment)
}

// CompleteBooking re-attempts payment capture on a pending booking.
// Completing an already-confirmed booking returns the stored record
// without charging again.
func (s *CheckoutService) CompleteBooking(ctx context.Context, bookingID, userID string, details *PaymentDetails) (*CheckoutResult, error) {
	booking, err := s.loadOwned(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	if booking.IsConfirmed() {
		return &CheckoutResult{Booking: booking}, nil
	}
	if !booking.IsPending() {
		return nil, domain.ErrInvalidStateTransition
	}

	if details == nil {
		details = &PaymentDetails{}
	}

	result, err := s.capture(ctx, booking, details)
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		// Lost the claim to a concurrent transition. If the winner
		// already confirmed, report its outcome idempotently.
		if current, loadErr := s.repo.GetByID(ctx, bookingID); loadErr == nil && current.IsConfirmed() {
			return &CheckoutResult{Booking: current}, nil
		}
	}
	return result, err
}

// CancelBooking cancels a pending or confirmed booking and releases
// its capacity. Cancellation is rejected once the schedule date has
// passed.
func (s *CheckoutService) CancelBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	booking, err := s.loadOwned(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	// A pending booking must be claimed first so cancellation and an
	// in-flight capture are mutually exclusive.
	claimed := false
	if booking.IsPending() {
		fresh, err := s.repo.ClaimPending(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		booking = fresh
		claimed = true
	}

	now := time.Now().UTC()
	if err := booking.Cancel(now); err != nil {
		if claimed {
			s.releaseClaimQuietly(ctx, booking.ID)
		}
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		if claimed {
			s.releaseClaimQuietly(ctx, booking.ID)
		}
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.releaseQuietly(ctx, &capacity.Reservation{
		ID:         booking.ReservationID,
		ScheduleID: booking.ScheduleID,
		Tickets:    booking.TicketCount,
	})
	s.notifier.BookingCancelled(ctx, booking)

	return booking, nil
}

// VerifyBankTransfer records an operator confirming receipt of funds
// for a bank-transfer booking, confirming the booking. Verifying an
// already-confirmed booking is a no-op.
func (s *CheckoutService) VerifyBankTransfer(ctx context.Context, bookingID, operatorID, transferRef string) (*domain.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsConfirmed() {
		return booking, nil
	}
	if !booking.IsPending() || !booking.PendingVerification {
		return nil, domain.ErrInvalidStateTransition
	}

	fresh, err := s.repo.ClaimPending(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	booking = fresh
	if !booking.PendingVerification {
		s.releaseClaimQuietly(ctx, booking.ID)
		return nil, domain.ErrInvalidStateTransition
	}

	now := time.Now().UTC()
	if err := booking.Confirm(transferRef, now); err != nil {
		s.releaseClaimQuietly(ctx, booking.ID)
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to persist verification: %w", err)
	}

	logger.Info("bank transfer verified",
		zap.String("booking_id", booking.ID),
		zap.String("operator_id", operatorID),
		zap.String("transfer_ref", transferRef))
	s.notifier.BookingConfirmed(ctx, booking)

	return booking, nil
}

// GetBooking retrieves a booking, enforcing ownership when a user ID
// is supplied (operators pass an empty user ID).
func (s *CheckoutService) GetBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	if userID == "" {
		return s.repo.GetByID(ctx, bookingID)
	}
	return s.loadOwned(ctx, bookingID, userID)
}

// FormatTotal renders a booking total for display
func (s *CheckoutService) FormatTotal(booking *domain.Booking) string {
	total := money.Amount{Minor: booking.TotalMinor, Currency: booking.Currency}
	return s.table.Format(total.Decimal(), booking.Currency)
}

// capture runs exactly one capture attempt against the variant for the
// booking's payment method. Capture is never retried here; the only
// retry path is the user calling CompleteBooking again.
func (s *CheckoutService) capture(ctx context.Context, booking *domain.Booking, details *PaymentDetails) (*CheckoutResult, error) {
	gw, err := s.dispatcher.ForMethod(booking.Method)
	if err != nil {
		return nil, err
	}

	// Claim the pending record before touching the gateway so a second
	// concurrent completion (or a cancellation) can never drive a
	// second charge. The claim is cleared by the Update that persists
	// the outcome.
	fresh, err := s.repo.ClaimPending(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking = fresh

	confirmation, err := gw.Capture(ctx, &gateway.CaptureRequest{
		BookingID:         booking.ID,
		UserID:            booking.UserID,
		AmountMinor:       booking.TotalMinor,
		Currency:          booking.Currency,
		Description:       fmt.Sprintf("booking %s (%d tickets)", booking.ID, booking.TicketCount),
		Metadata:          map[string]string{"schedule_id": booking.ScheduleID},
		CardToken:         details.CardToken,
		ReturnURL:         details.ReturnURL,
		PickupInstruction: details.PickupInstruction,
		DeliveryAddress:   details.DeliveryAddress,
	})

	now := time.Now().UTC()

	if err != nil {
		// Missing capture inputs are a validation failure: the booking
		// stays Pending so the user can complete with corrected details.
		if errors.Is(err, domain.ErrMissingDeliveryAddress) || errors.Is(err, domain.ErrMissingPickupInstruction) {
			s.releaseClaimQuietly(ctx, booking.ID)
			return nil, err
		}

		if failErr := booking.Fail(err.Error(), now); failErr != nil {
			return nil, failErr
		}
		if updateErr := s.repo.Update(ctx, booking); updateErr != nil {
			logger.Error("failed to persist failed booking",
				zap.String("booking_id", booking.ID), zap.Error(updateErr))
			s.releaseClaimQuietly(ctx, booking.ID)
		}
		s.releaseQuietly(ctx, &capacity.Reservation{
			ID:         booking.ReservationID,
			ScheduleID: booking.ScheduleID,
			Tickets:    booking.TicketCount,
		})
		s.notifier.BookingFailed(ctx, booking)
		return &CheckoutResult{Booking: booking}, err
	}

	if confirmation.PendingVerification {
		booking.PaymentRef = confirmation.Reference
		booking.PendingVerification = true
		booking.UpdatedAt = now
		if err := s.repo.Update(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to persist pending verification: %w", err)
		}
		return &CheckoutResult{Booking: booking, Instruction: confirmation.Instruction}, nil
	}

	if err := booking.Confirm(confirmation.Reference, now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}
	s.notifier.BookingConfirmed(ctx, booking)

	return &CheckoutResult{Booking: booking, Instruction: confirmation.Instruction}, nil
}

func (s *CheckoutService) convertBreakdown(breakdown *pricing.Breakdown, target string) (*Quote, error) {
	base := s.table.Base()

	unit, err := s.table.Convert(breakdown.UnitPrice.Decimal(), base, target)
	if err != nil {
		return nil, err
	}
	baseTotal, err := s.table.Convert(breakdown.BaseTotal.Decimal(), base, target)
	if err != nil {
		return nil, err
	}
	addOnTotal, err := s.table.Convert(breakdown.AddOnTotal.Decimal(), base, target)
	if err != nil {
		return nil, err
	}
	subtotal, err := s.table.Convert(breakdown.Subtotal.Decimal(), base, target)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Breakdown:    breakdown,
		Currency:     target,
		UnitPrice:    unit,
		BaseTotal:    baseTotal,
		AddOnTotal:   addOnTotal,
		Subtotal:     subtotal,
		DisplayTotal: s.table.Format(subtotal, target),
	}, nil
}

func (s *CheckoutService) loadOwned(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// releaseClaimQuietly frees a booking claim when the transition did not
// go through and no charge was made. Post-charge persistence failures
// keep the claim held so nothing can charge the booking again.
func (s *CheckoutService) releaseClaimQuietly(ctx context.Context, bookingID string) {
	if err := s.repo.ReleaseClaim(ctx, bookingID); err != nil {
		logger.Error("failed to release booking claim",
			zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func (s *CheckoutService) releaseQuietly(ctx context.Context, reservation *capacity.Reservation) {
	if err := s.gate.Release(ctx, reservation); err != nil {
		logger.Error("failed to release capacity",
			zap.String("schedule_id", reservation.ScheduleID),
			zap.Int("tickets", reservation.Tickets),
			zap.Error(err))
	}
}
