package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/middleware"
	"github.com/seatwise/reserver/internal/models"
	"github.com/seatwise/reserver/internal/timezone"
)

type LocationHandler struct {
	db *gorm.DB
}

func NewLocationHandler(db *gorm.DB) *LocationHandler {
	return &LocationHandler{db: db}
}

type UpdateLocationRequest struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *LocationHandler) GetMeLocation(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var loc models.Location
	if err := h.db.First(&loc, locationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "location_not_found", "Location not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_location", "Failed to load location.")
		return
	}

	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) UpdateMeLocation(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var loc models.Location
	if err := h.db.First(&loc, locationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "location_not_found", "Location not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_location", "Failed to load location.")
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Email != nil {
		loc.Email = *req.Email
	}
	if req.Phone != nil {
		loc.Phone = *req.Phone
	}
	if req.Address != nil {
		loc.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone.")
			return
		}
		loc.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive minutes.")
			return
		}
		loc.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&loc).Error; err != nil {
		httperr.Internal(c, "failed_to_update_location", "Failed to save location settings.")
		return
	}

	c.JSON(http.StatusOK, loc)
}
