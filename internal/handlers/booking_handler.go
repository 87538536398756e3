package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/dto"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/middleware"
	usecase "github.com/seatwise/reserver/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	repo     domain.Repository
	list     *usecase.ListBookings
	confirm  *usecase.ConfirmBooking
	cancel   *usecase.CancelBooking
	complete *usecase.CompleteBooking
	noShow   *usecase.MarkNoShow
}

func NewBookingHandler(
	repo domain.Repository,
	list *usecase.ListBookings,
	confirm *usecase.ConfirmBooking,
	cancel *usecase.CancelBooking,
	complete *usecase.CompleteBooking,
	noShow *usecase.MarkNoShow,
) *BookingHandler {
	return &BookingHandler{
		repo:     repo,
		list:     list,
		confirm:  confirm,
		cancel:   cancel,
		complete: complete,
		noShow:   noShow,
	}
}

// ======================================================
// LIST / GET
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := domain.BookingFilter{
		Status:     c.Query("status"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
		LocationID: &locationID,
		Page:       page,
		Limit:      limit,
	}

	bookings, total, err := h.list.Execute(c.Request.Context(), filter)
	if err != nil {
		httperr.Internal(c, "booking_list_failed", "Failed to list bookings.")
		return
	}

	items := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.BookingListDTO{
			ID:            b.ID,
			Reference:     b.Reference,
			CustomerName:  b.CustomerName,
			CustomerPhone: b.CustomerPhone,
			GuestCount:    b.GuestCount,
			BookingDate:   b.BookingDate,
			BookingTime:   b.BookingTime,
			TableNumber:   b.TableNumber,
			Status:        b.Status,
			CreatedAt:     b.CreatedAt,
		})
	}

	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": dto.PageMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := h.bookingID(c)
	if err != nil {
		return
	}

	b, err := h.repo.BookingByID(c.Request.Context(), id)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	c.JSON(http.StatusOK, b)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uint, userID *uint) (any, error) {
		return h.confirm.Execute(c.Request.Context(), id, userID)
	})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uint, userID *uint) (any, error) {
		return h.cancel.Execute(c.Request.Context(), id, userID)
	})
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uint, userID *uint) (any, error) {
		return h.complete.Execute(c.Request.Context(), id, userID)
	})
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uint, userID *uint) (any, error) {
		return h.noShow.Execute(c.Request.Context(), id, userID)
	})
}

func (h *BookingHandler) transition(
	c *gin.Context,
	run func(c *gin.Context, id uint, userID *uint) (any, error),
) {
	id, err := h.bookingID(c)
	if err != nil {
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)

	result, err := run(c, id, &userID)
	if err != nil {
		httperr.FromBusiness(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) bookingID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Booking id must be numeric.")
		return 0, err
	}
	return uint(id), nil
}
