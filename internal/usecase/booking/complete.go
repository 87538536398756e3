package booking

import (
	"context"

	"github.com/seatwise/reserver/internal/audit"
	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/models"
	"github.com/seatwise/reserver/internal/timezone"
)

type CompleteBooking struct {
	repo   domain.Repository
	ledger *ledger.Service
	audit  *audit.Dispatcher
}

func NewCompleteBooking(
	repo domain.Repository,
	ldg *ledger.Service,
	aud *audit.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:   repo,
		ledger: ldg,
		audit:  aud,
	}
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	bookingID uint,
	userID *uint,
) (*models.Booking, error) {

	b, err := loadBooking(ctx, uc.repo, bookingID)
	if err != nil {
		return nil, err
	}

	now := timezone.Now()
	if err := domain.Complete(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBookingStatus(ctx, b); err != nil {
		return nil, httperr.ErrPersistence(err)
	}

	// Drives completed_bookings and the auto-VIP rule; a ledger hiccup
	// never rolls back the completion.
	if err := uc.ledger.OnCompleted(ctx, b.CustomerPhone); err != nil {
		logging.Error.Printf("ledger complete for booking %s: %v", b.Reference, err)
	}

	uc.audit.Dispatch(audit.Event{
		LocationID: b.LocationID,
		UserID:     userID,
		Action:     "booking_completed",
		Entity:     "booking",
		EntityID:   &b.ID,
	})

	return b, nil
}
