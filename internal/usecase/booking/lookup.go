package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/models"
)

// loadBooking fetches the booking a lifecycle transition targets. A
// missing booking is a resource conflict of the transition, not a raw
// store error; anything else is a persistence failure.
func loadBooking(
	ctx context.Context,
	repo domain.Repository,
	bookingID uint,
) (*models.Booking, error) {

	b, err := repo.BookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessDetail(
				httperr.CodeResourceConflict,
				"booking_not_found",
			)
		}
		return nil, httperr.ErrPersistence(err)
	}
	return b, nil
}
