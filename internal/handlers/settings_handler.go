package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seatwise/reserver/internal/audit"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/httpresp"
	"github.com/seatwise/reserver/internal/middleware"
	"github.com/seatwise/reserver/internal/settings"
)

type SettingsHandler struct {
	settings *settings.Service
	audit    *audit.Dispatcher
}

func NewSettingsHandler(st *settings.Service, aud *audit.Dispatcher) *SettingsHandler {
	return &SettingsHandler{settings: st, audit: aud}
}

type SetSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func (h *SettingsHandler) List(c *gin.Context) {
	items, err := h.settings.List(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "settings_list_failed", "Failed to list settings.")
		return
	}

	httpresp.List(c, items)
}

func (h *SettingsHandler) Set(c *gin.Context) {
	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if err := h.settings.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		httperr.Internal(c, "settings_update_failed", "Failed to update setting.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "setting_changed",
		Entity:   "setting",
		Metadata: gin.H{"key": req.Key},
	})

	c.JSON(http.StatusOK, gin.H{
		"key":   req.Key,
		"value": req.Value,
	})
}
