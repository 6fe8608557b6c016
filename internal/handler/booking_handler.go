package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/internal/dto"
	"github.com/atlasvoyages/booking-engine/internal/service"
	"github.com/atlasvoyages/booking-engine/pkg/response"
)

// BookingHandler exposes the checkout flow over HTTP
type BookingHandler struct {
	checkout *service.CheckoutService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(checkout *service.CheckoutService) *BookingHandler {
	return &BookingHandler{checkout: checkout}
}

// Quote handles POST /api/v1/quotes
func (h *BookingHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	quote, err := h.checkout.Quote(c.Request.Context(), &service.QuoteInput{
		ProductID:   req.ProductID,
		ScheduleID:  req.ScheduleID,
		TicketCount: req.TicketCount,
		AddOnIDs:    req.AddOnIDs,
		Currency:    req.Currency,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.QuoteResponse{
		ProductID:    req.ProductID,
		ScheduleID:   req.ScheduleID,
		TicketCount:  quote.Breakdown.TicketCount,
		Currency:     quote.Currency,
		UnitPrice:    quote.UnitPrice,
		BaseTotal:    quote.BaseTotal,
		AddOnTotal:   quote.AddOnTotal,
		Subtotal:     quote.Subtotal,
		DisplayTotal: quote.DisplayTotal,
		AddOnIDs:     req.AddOnIDs,
	})
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), &service.CheckoutInput{
		ProductID:   req.ProductID,
		ScheduleID:  req.ScheduleID,
		UserID:      req.UserID,
		TicketCount: req.TicketCount,
		AddOnIDs:    req.AddOnIDs,
		Currency:    req.Currency,
		Method:      domain.PaymentMethod(req.PaymentMethod),
		Payment: service.PaymentDetails{
			CardToken:         req.CardToken,
			ReturnURL:         req.ReturnURL,
			PickupInstruction: req.PickupInstruction,
			DeliveryAddress:   req.DeliveryAddress,
		},
	})
	if err != nil {
		// A failed capture still created a Failed booking record; the
		// error response carries its ID so the client can inspect it.
		if result != nil && result.Booking != nil {
			writePaymentError(c, err, result.Booking.ID)
			return
		}
		writeDomainError(c, err)
		return
	}

	response.Created(c, h.view(result))
}

// Complete handles POST /api/v1/bookings/:id/complete
func (h *BookingHandler) Complete(c *gin.Context) {
	var req dto.CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.checkout.CompleteBooking(c.Request.Context(), c.Param("id"), req.UserID, &service.PaymentDetails{
		CardToken:         req.CardToken,
		ReturnURL:         req.ReturnURL,
		PickupInstruction: req.PickupInstruction,
		DeliveryAddress:   req.DeliveryAddress,
	})
	if err != nil {
		if result != nil && result.Booking != nil {
			writePaymentError(c, err, result.Booking.ID)
			return
		}
		writeDomainError(c, err)
		return
	}

	response.Success(c, h.view(result))
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req dto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.checkout.CancelBooking(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromBooking(booking, h.checkout.FormatTotal(booking), ""))
}

// VerifyTransfer handles POST /api/v1/bookings/:id/verify-transfer
func (h *BookingHandler) VerifyTransfer(c *gin.Context) {
	var req dto.VerifyTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.checkout.VerifyBankTransfer(c.Request.Context(), c.Param("id"), req.OperatorID, req.TransferRef)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromBooking(booking, h.checkout.FormatTotal(booking), ""))
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.checkout.GetBooking(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromBooking(booking, h.checkout.FormatTotal(booking), ""))
}

func (h *BookingHandler) view(result *service.CheckoutResult) *dto.BookingResponse {
	return dto.FromBooking(result.Booking, h.checkout.FormatTotal(result.Booking), result.Instruction)
}

// writeDomainError maps domain errors onto the response envelope
func writeDomainError(c *gin.Context, err error) {
	var capErr *domain.CapacityError
	var payErr *domain.PaymentError

	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		response.NotFound(c, "booking not found")
	case errors.Is(err, domain.ErrProductNotFound):
		response.NotFound(c, "product not found")
	case errors.Is(err, domain.ErrScheduleNotFound):
		response.NotFound(c, "schedule not found")
	case errors.As(err, &capErr):
		response.Conflict(c, "CAPACITY_EXCEEDED", capErr.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		response.Conflict(c, "CAPACITY_EXCEEDED", err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		response.Conflict(c, "INVALID_STATE", err.Error())
	case errors.Is(err, domain.ErrSchedulePast):
		response.UnprocessableEntity(c, "SCHEDULE_PAST", err.Error())
	case errors.Is(err, domain.ErrInvalidTicketCount),
		errors.Is(err, domain.ErrUnknownAddOn),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrMissingDeliveryAddress),
		errors.Is(err, domain.ErrMissingPickupInstruction):
		response.UnprocessableEntity(c, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, domain.ErrNoValidPrice):
		response.Error(c, http.StatusUnprocessableEntity, "NO_VALID_PRICE", err.Error(), "")
	case errors.As(err, &payErr):
		writePaymentError(c, err, "")
	default:
		response.InternalError(c, err)
	}
}

// writePaymentError maps a capture failure, attaching the failed
// booking ID when one was recorded
func writePaymentError(c *gin.Context, err error, bookingID string) {
	var payErr *domain.PaymentError
	if !errors.As(err, &payErr) {
		writeDomainError(c, err)
		return
	}

	code := "PAYMENT_REJECTED"
	if payErr.Kind == domain.GatewayUnreachable {
		code = "PAYMENT_UNAVAILABLE"
	}
	response.Error(c, http.StatusPaymentRequired, code, payErr.Reason, bookingID)
}
