package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beatfarda/studio-api/internal/model"
	"github.com/beatfarda/studio-api/internal/service/availability"
	"github.com/beatfarda/studio-api/internal/service/catalog"
	"github.com/beatfarda/studio-api/internal/service/reservation"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type Handler struct {
	catalog      *catalog.Service
	availability *availability.Service
	reservations *reservation.Service
	accountID    uuid.UUID
}

func NewHandler(
	catalogSvc *catalog.Service,
	availabilitySvc *availability.Service,
	reservationSvc *reservation.Service,
	accountID uuid.UUID,
) *Handler {
	return &Handler{
		catalog:      catalogSvc,
		availability: availabilitySvc,
		reservations: reservationSvc,
		accountID:    accountID,
	}
}

// GetAvailability returns the open slots for one service on one calendar day.
func (h *Handler) GetAvailability(c *gin.Context) {
	serviceID := c.Query("service_id")
	if serviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "service_id is required"})
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "date must be YYYY-MM-DD"})
		return
	}

	svc, err := h.catalog.Get(serviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	slots, err := h.availability.GetAvailableSlots(c.Request.Context(), date, svc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
		"date":       date.Format(dateLayout),
		"service_id": svc.ID,
		"slots":      slots,
	}})
}

// HoldBooking places a provisional hold on a slot and returns the booking,
// including the hold expiry the client should count down against.
func (h *Handler) HoldBooking(c *gin.Context) {
	var req model.HoldBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	id, err := h.reservations.Hold(c.Request.Context(), reservation.HoldRequest{
		AccountID:  h.accountID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	booking, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		// The hold itself succeeded; return the id so the client can proceed.
		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"booking_id": id}})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": booking})
}

// ConfirmBooking finalizes a held booking after payment. Confirming twice is
// a no-op that returns the booking unchanged.
func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	if err := h.reservations.Confirm(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	booking, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	if err := h.reservations.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "booking cancelled"})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	booking, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

// ListBookings returns active bookings in [start, end). Lapsed holds are
// released before listing so the response never shows a dead hold as live.
func (h *Handler) ListBookings(c *gin.Context) {
	start, err := parseRangeBound(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "start must be YYYY-MM-DD or RFC3339"})
		return
	}
	end, err := parseRangeBound(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "end must be YYYY-MM-DD or RFC3339"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "end must be after start"})
		return
	}

	bookings, err := h.reservations.GetBookingsForRange(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bookings})
}

func parseRangeBound(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode()
		message = appErr.Message
	}
	c.JSON(status, gin.H{"status": "error", "message": message})
}
