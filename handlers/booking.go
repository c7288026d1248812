package handlers

import (
	"net/http"
	"time"

	"eventra/middleware"
	"eventra/models"
	"eventra/services/booking"
	"eventra/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes reservation and lifecycle endpoints.
type BookingHandler struct {
	Svc booking.LedgerService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc booking.LedgerService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// ReserveHandler commits a new reservation for the authenticated user.
func (h *BookingHandler) ReserveHandler(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	req.UserID = middleware.SubjectID(c)

	b, err := h.Svc.Reserve(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ConfirmHandler applies provider acceptance to a pending booking.
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	h.applyProviderEvent(c, models.EventConfirm)
}

// DeliverHandler marks a paid booking as delivered, unlocking verified
// reviews for the booking's user.
func (h *BookingHandler) DeliverHandler(c *gin.Context) {
	h.applyProviderEvent(c, models.EventDeliver)
}

func (h *BookingHandler) applyProviderEvent(c *gin.Context, event models.BookingEvent) {
	bookingID := c.Param("id")
	b, err := h.Svc.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !ownsProvider(c, b.ProviderID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "only the booked provider may do this")
		return
	}

	updated, err := h.Svc.Transition(c.Request.Context(), bookingID, event)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelHandler cancels a pending or confirmed booking. The booking's user,
// the booked provider, or an admin may cancel.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	bookingID := c.Param("id")
	b, err := h.Svc.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !partyToBooking(c, b) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not a party to this booking")
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	updated, err := h.Svc.Cancel(c.Request.Context(), bookingID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetBookingHandler returns one booking to a party of it.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !partyToBooking(c, b) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not a party to this booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListProviderBookingsHandler returns the provider's bookings in a range.
func (h *BookingHandler) ListProviderBookingsHandler(c *gin.Context) {
	providerID := c.Param("id")
	if !ownsProvider(c, providerID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "only the owning provider may list bookings")
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	bookings, err := h.Svc.ListByProvider(c.Request.Context(), providerID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListMyBookingsHandler returns the authenticated user's bookings.
func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	bookings, err := h.Svc.ListByUser(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "from must be an RFC3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "to must be an RFC3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func partyToBooking(c *gin.Context, b *models.Booking) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	subject := middleware.SubjectID(c)
	switch middleware.Role(c) {
	case middleware.RoleUser:
		return b.UserID == subject
	case middleware.RoleProvider:
		return b.ProviderID == subject
	}
	return false
}
