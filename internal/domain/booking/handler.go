package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"estatebot/internal/domain/reason"
	"estatebot/internal/middleware"
	"estatebot/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking godoc
// @Summary Request a booking; it stays pending until an admin confirms it
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Property and dates"
// @Success 201 {object} Booking
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, code, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// GetAvailability godoc
// @Summary Whether a property is free for [check_in, check_out)
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Param id path int true "Property ID"
// @Param check_in query string true "RFC3339 or YYYY-MM-DD"
// @Param check_out query string true "RFC3339 or YYYY-MM-DD"
// @Success 200 {object} Availability
// @Router /properties/{id}/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	propertyID, ok := pathID(c)
	if !ok {
		return
	}
	checkIn, err1 := parseDate(c.Query("check_in"))
	checkOut, err2 := parseDate(c.Query("check_out"))
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in and check_out must be dates")
		return
	}

	available, err := h.service.IsAvailable(c.Request.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, Availability{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Available:  available,
	})
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if b == nil {
		response.Reason(c, reason.NotFound)
		return
	}
	if b.UserID != userID && !middleware.IsAdmin(c) {
		response.Reason(c, reason.Forbidden)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, code, err := h.service.CancelBooking(c.Request.Context(), id, userID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// ConfirmBooking godoc
// @Summary Confirm a pending booking (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} Booking
// @Router /admin/bookings/{id}/confirm [patch]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, code, err := h.service.ConfirmBooking(c.Request.Context(), id, adminID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if code != reason.OK {
		response.Reason(c, code)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) GetPropertyBookings(c *gin.Context) {
	propertyID, ok := pathID(c)
	if !ok {
		return
	}

	list, err := h.service.ListForProperty(c.Request.Context(), propertyID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
