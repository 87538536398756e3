package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
	usecase "github.com/seatwise/reserver/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler is the unauthenticated guest surface: browse
// availability, place a booking, look it up and cancel it by the
// opaque reference handed out at creation time.
type PublicHandler struct {
	repo         domain.Repository
	create       *usecase.CreateBooking
	availability *usecase.GetAvailability
	cancel       *usecase.CancelBooking
}

func NewPublicHandler(
	repo domain.Repository,
	create *usecase.CreateBooking,
	availability *usecase.GetAvailability,
	cancel *usecase.CancelBooking,
) *PublicHandler {
	return &PublicHandler{
		repo:         repo,
		create:       create,
		availability: availability,
		cancel:       cancel,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required"`

	GuestCount int    `json:"guest_count" binding:"required,min=1"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"required"` // HH:mm

	SpecialRequests string `json:"special_requests"`
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	slug := c.Param("slug")

	location, err := h.repo.LocationBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "location_not_found", "Location not found.")
		return
	}

	partySize, _ := strconv.Atoi(c.Query("party_size"))

	slot := domain.Slot{
		Date:       c.Query("date"),
		Time:       c.Query("time"),
		LocationID: &location.ID,
	}

	avail, err := h.availability.Execute(c.Request.Context(), slot, partySize)
	if err != nil {
		httperr.FromBusiness(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location":     location.Slug,
		"date":         slot.Date,
		"time":         slot.Time,
		"availability": avail,
	})
}

////////////////////////////////////////////////////////
// CREATE
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	slug := c.Param("slug")

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	b, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		LocationSlug:    slug,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		GuestCount:      req.GuestCount,
		Date:            req.Date,
		Time:            req.Time,
		Source:          "website",
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "location_not_found", "Location not found.")
			return
		}
		httperr.FromBusiness(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

////////////////////////////////////////////////////////
// LOOKUP / CANCEL BY REFERENCE
////////////////////////////////////////////////////////

func (h *PublicHandler) BookingByReference(c *gin.Context) {
	reference := c.Param("reference")

	b, err := h.repo.BookingByReference(c.Request.Context(), reference)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *PublicHandler) CancelByReference(c *gin.Context) {
	reference := c.Param("reference")

	b, err := h.repo.BookingByReference(c.Request.Context(), reference)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	cancelled, err := h.cancel.Execute(c.Request.Context(), b.ID, nil)
	if err != nil {
		httperr.FromBusiness(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}
