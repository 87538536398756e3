package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/httpresp"
	"github.com/seatwise/reserver/internal/middleware"
	"github.com/seatwise/reserver/internal/models"
)

type TableHandler struct {
	db *gorm.DB
}

func NewTableHandler(db *gorm.DB) *TableHandler {
	return &TableHandler{db: db}
}

// --------- Requests ---------

type CreateTableRequest struct {
	TableNumber int `json:"table_number" binding:"required,min=1"`
	Capacity    int `json:"capacity" binding:"required,min=1"`
}

type UpdateTableRequest struct {
	Capacity    *int  `json:"capacity,omitempty"`
	IsAvailable *bool `json:"is_available,omitempty"`
}

// --------- Handlers ---------

func (h *TableHandler) List(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var tables []models.Table
	if err := h.db.
		Where("location_id = ?", locationID).
		Order("table_number ASC").
		Find(&tables).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_tables"})
		return
	}

	httpresp.List(c, tables)
}

func (h *TableHandler) Create(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var count int64
	h.db.Model(&models.Table{}).
		Where("location_id = ? AND table_number = ?", locationID, req.TableNumber).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "table_number_already_exists"})
		return
	}

	table := models.Table{
		LocationID:  locationID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		IsAvailable: true,
	}

	if err := h.db.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_table"})
		return
	}

	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) Update(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	id := c.Param("id")

	var table models.Table
	if err := h.db.
		Where("id = ? AND location_id = ?", id, locationID).
		First(&table).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_table"})
		return
	}

	var req UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.IsAvailable != nil {
		table.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_table"})
		return
	}

	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) Delete(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	id := c.Param("id")

	res := h.db.
		Where("id = ? AND location_id = ?", id, locationID).
		Delete(&models.Table{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_table"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
		return
	}

	c.Status(http.StatusNoContent)
}
