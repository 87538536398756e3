package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seatwise/reserver/internal/audit"
	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/models"
	"github.com/seatwise/reserver/internal/timezone"
	"github.com/seatwise/reserver/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	LocationSlug string

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	GuestCount int

	Date string
	Time string

	Source          string
	SpecialRequests string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo   domain.Repository
	ledger *ledger.Service
	bus    *event.Bus
	audit  *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	ldg *ledger.Service,
	bus *event.Bus,
	aud *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:   repo,
		ledger: ldg,
		bus:    bus,
		audit:  aud,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// Required fields
	// --------------------------------------------------
	if in.CustomerName == "" {
		return nil, httperr.ErrValidation("customer_name")
	}
	if in.CustomerPhone == "" {
		return nil, httperr.ErrValidation("customer_phone")
	}
	if in.CustomerEmail == "" || !validators.IsEmailSyntaxValid(in.CustomerEmail) {
		return nil, httperr.ErrValidation("customer_email")
	}
	if in.GuestCount <= 0 {
		return nil, httperr.ErrValidation("guest_count")
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, httperr.ErrValidation("booking_date")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return nil, httperr.ErrValidation("booking_time")
	}

	// --------------------------------------------------
	// Location + minimum advance
	// --------------------------------------------------
	var location *models.Location
	if in.LocationSlug != "" {
		loc, err := uc.repo.LocationBySlug(ctx, in.LocationSlug)
		if err != nil {
			return nil, err
		}
		location = loc
	}

	tz := timezone.DefaultTimezone
	minAdvance := 0
	if location != nil {
		tz = location.Timezone
		minAdvance = location.MinAdvanceMinutes
		if minAdvance <= 0 {
			minAdvance = 60
		}
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(tz),
	)
	if err != nil {
		return nil, httperr.ErrValidation("booking_date")
	}

	now := timezone.NowIn(tz)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "slot_too_soon")
	}

	// --------------------------------------------------
	// Build + checked insert
	// --------------------------------------------------
	source := in.Source
	if source == "" {
		source = "website"
	}

	b := &models.Booking{
		Reference:       uuid.NewString(),
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		GuestCount:      in.GuestCount,
		BookingDate:     in.Date,
		BookingTime:     in.Time,
		Status:          string(domain.InitialStatus()),
		BookingSource:   source,
		SpecialRequests: in.SpecialRequests,
	}
	if location != nil {
		b.LocationID = &location.ID
	}

	if err := uc.repo.CreateBookingChecked(ctx, b); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Ledger + events (never fail the booking)
	// --------------------------------------------------
	customer, err := uc.ledger.UpsertFromBooking(ctx, b)
	if err != nil {
		logging.Error.Printf("ledger upsert for booking %s: %v", b.Reference, err)
	}

	uc.bus.Publish(event.Event{
		Type:     event.BookingCreated,
		Booking:  b,
		Customer: customer,
	})

	uc.audit.Dispatch(audit.Event{
		LocationID: b.LocationID,
		Action:     "booking_created",
		Entity:     "booking",
		EntityID:   &b.ID,
	})

	return b, nil
}
