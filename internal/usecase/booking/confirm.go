package booking

import (
	"context"

	"github.com/seatwise/reserver/internal/audit"
	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/models"
	"github.com/seatwise/reserver/internal/timezone"
)

// maxClaimAttempts bounds the allocate/claim loop under heavy
// contention for the same slot.
const maxClaimAttempts = 5

type ConfirmBooking struct {
	repo  domain.Repository
	bus   *event.Bus
	audit *audit.Dispatcher
}

func NewConfirmBooking(
	repo domain.Repository,
	bus *event.Bus,
	aud *audit.Dispatcher,
) *ConfirmBooking {
	return &ConfirmBooking{
		repo:  repo,
		bus:   bus,
		audit: aud,
	}
}

// Execute assigns the best-fitting free table and moves the booking to
// confirmed. The pick and the write are separate steps, so the write
// is a conditional claim: if a racing confirmation takes the table
// first, the loop re-picks from what is left instead of
// double-allocating.
func (uc *ConfirmBooking) Execute(
	ctx context.Context,
	bookingID uint,
	userID *uint,
) (*models.Booking, error) {

	b, err := loadBooking(ctx, uc.repo, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanConfirm(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	slot := domain.Slot{
		Date:       b.BookingDate,
		Time:       b.BookingTime,
		LocationID: b.LocationID,
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		table, err := uc.repo.BestFitTable(ctx, slot, b.GuestCount)
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, httperr.ErrBusiness(httperr.CodeCapacityExhausted)
		}

		now := timezone.Now()
		won, err := uc.repo.ClaimTable(ctx, b.ID, slot, table.TableNumber, now)
		if err != nil {
			return nil, err
		}

		if won {
			b.Status = string(domain.StatusConfirmed)
			b.TableNumber = &table.TableNumber
			b.ConfirmedAt = &now

			uc.bus.Publish(event.Event{
				Type:    event.BookingConfirmed,
				Booking: b,
			})

			uc.audit.Dispatch(audit.Event{
				LocationID: b.LocationID,
				UserID:     userID,
				Action:     "booking_confirmed",
				Entity:     "booking",
				EntityID:   &b.ID,
			})

			return b, nil
		}

		// The claim lost. Either the booking itself moved on, or a
		// racing confirmation took the table; only the latter is
		// worth retrying.
		b, err = loadBooking(ctx, uc.repo, bookingID)
		if err != nil {
			return nil, err
		}
		if domain.Status(b.Status) != domain.StatusPending {
			return nil, httperr.ErrBusiness(httperr.CodeResourceConflict)
		}
	}

	// Racing claimers stole every candidate within the attempt budget;
	// from this booking's point of view the slot is full.
	return nil, httperr.ErrBusinessDetail(
		httperr.CodeCapacityExhausted,
		"claim_contention",
	)
}
