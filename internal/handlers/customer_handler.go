package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/audit"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/httpresp"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/middleware"
	"github.com/seatwise/reserver/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type CustomerHandler struct {
	db     *gorm.DB
	ledger *ledger.Service
	audit  *audit.Dispatcher
}

func NewCustomerHandler(
	db *gorm.DB,
	ldg *ledger.Service,
	aud *audit.Dispatcher,
) *CustomerHandler {
	return &CustomerHandler{
		db:     db,
		ledger: ldg,
		audit:  aud,
	}
}

// --------- Requests ---------

type SetCustomerFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// ======================================================
// LIST / GET
// ======================================================

func (h *CustomerHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	vipStr := strings.TrimSpace(c.Query("vip"))
	blacklistedStr := strings.TrimSpace(c.Query("blacklisted"))

	q := h.db.Model(&models.Customer{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	if vipStr == "true" {
		q = q.Where("vip_status = ?", true)
	} else if vipStr == "false" {
		q = q.Where("vip_status = ?", false)
	}

	if blacklistedStr == "true" {
		q = q.Where("blacklisted = ?", true)
	} else if blacklistedStr == "false" {
		q = q.Where("blacklisted = ?", false)
	}

	var customers []models.Customer
	if err := q.
		Order("last_visit DESC, id DESC").
		Limit(200).
		Find(&customers).Error; err != nil {

		httperr.Internal(c, "customer_list_failed", "Failed to list customers.")
		return
	}

	httpresp.List(c, customers)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_customer_id", "Customer id must be numeric.")
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, uint(id)).Error; err != nil {
		httperr.NotFound(c, "customer_not_found", "Customer not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer":   customer,
		"is_problem": ledger.IsProblem(&customer),
	})
}

// ======================================================
// MANUAL FLAGS
// ======================================================

func (h *CustomerHandler) SetVIP(c *gin.Context) {
	h.setFlag(c, "vip_status", h.ledger.SetVIP)
}

func (h *CustomerHandler) SetBlacklist(c *gin.Context) {
	h.setFlag(c, "blacklisted", h.ledger.SetBlacklist)
}

func (h *CustomerHandler) setFlag(
	c *gin.Context,
	flag string,
	set func(ctx context.Context, id uint, value bool) error,
) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_customer_id", "Customer id must be numeric.")
		return
	}

	var req SetCustomerFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		httperr.BadRequest(c, "invalid_request", "A boolean value is required.")
		return
	}

	if err := set(c.Request.Context(), uint(id), *req.Value); err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "customer_not_found", "Customer not found.")
			return
		}
		httperr.Internal(c, "customer_update_failed", "Failed to update customer.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	customerID := uint(id)

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "customer_" + flag + "_changed",
		Entity:   "customer",
		EntityID: &customerID,
		Metadata: gin.H{"value": *req.Value},
	})

	var customer models.Customer
	if err := h.db.First(&customer, customerID).Error; err != nil {
		httperr.NotFound(c, "customer_not_found", "Customer not found.")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ======================================================
// PROBLEM REPORT
// ======================================================

func (h *CustomerHandler) Problems(c *gin.Context) {
	customers, err := h.ledger.ProblemCustomers(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "customer_report_failed", "Failed to build report.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(customers),
		"customers": customers,
	})
}
