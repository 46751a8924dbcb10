package handlers

import (
	"errors"
	"net/http"
	"time"

	shopRepo "barberflow/database/repository/shop"
	"barberflow/models"
	"barberflow/services/booking"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the staff view of bookings: the day sheet,
// status transitions, and a direct availability query for the front
// desk.
type BookingHandler struct {
	Bookings     booking.BookingService
	Shops        shopRepo.ShopRepository
	Availability *booking.AvailabilityResolver
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(bookings booking.BookingService, shops shopRepo.ShopRepository, availability *booking.AvailabilityResolver) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Shops: shops, Availability: availability}
}

// ListForDay returns every booking of one shop on one date.
func (h *BookingHandler) ListForDay(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "date must be YYYY-MM-DD")
		return
	}

	bookings, err := h.Bookings.ListForDay(c.Request.Context(), shopID, date)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// UpdateStatus applies a staff status transition (confirm, complete,
// no-show, cancel). Lifecycle rules live on the booking model; an
// illegal transition answers 409.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}

	var req struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if !req.Status.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "unknown status")
		return
	}

	updated, err := h.Bookings.Transition(c.Request.Context(), shopID, c.Param("bookingId"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidTransition):
			utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
		case errors.Is(err, booking.ErrSlotTaken):
			utils.JSONError(c, http.StatusConflict, "Conflict", "slot was re-booked in the meantime")
		default:
			utils.JSONError(c, http.StatusNotFound, "Not Found", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetAvailability answers the front-desk question "what's open for this
// barber on this date": the same resolver the conversation uses, exposed
// over the admin API.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}

	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "date must be YYYY-MM-DD")
		return
	}

	shop, err := h.Shops.GetShop(c.Request.Context(), shopID)
	if err != nil || shop == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "shop not found")
		return
	}
	barber, err := h.Shops.GetBarber(c.Request.Context(), shopID, c.Param("barberId"))
	if err != nil || barber == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "barber not found")
		return
	}

	service, err := h.Shops.GetService(c.Request.Context(), shopID, c.Query("service"))
	if err != nil || service == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "service not found")
		return
	}

	slots, err := h.Availability.Slots(c.Request.Context(), shop, barber, date, service.DurationMin, time.Now())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to resolve availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"barber_id": barber.ID,
		"date":      date,
		"service":   service.Key,
		"slots":     slots,
	})
}
