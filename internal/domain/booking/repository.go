package booking

import (
	"context"
	"time"

	"github.com/seatwise/reserver/internal/models"
)

type Repository interface {
	// -------- Location --------
	LocationBySlug(
		ctx context.Context,
		slug string,
	) (*models.Location, error)

	LocationByID(
		ctx context.Context,
		id uint,
	) (*models.Location, error)

	// -------- Allocator --------

	// CapacityAvailable answers the aggregate question: could some
	// combination of available tables hold the party at the slot,
	// given what pending/confirmed bookings already consume there.
	// excludeBookingID (0 = none) removes one booking from the sum.
	CapacityAvailable(
		ctx context.Context,
		slot Slot,
		partySize int,
		excludeBookingID uint,
	) (bool, error)

	// BestFitTable returns the smallest free table with capacity >=
	// partySize at the slot, ties broken by lowest table number, or
	// nil when no single table qualifies.
	BestFitTable(
		ctx context.Context,
		slot Slot,
		partySize int,
	) (*models.Table, error)

	AvailableTableCount(
		ctx context.Context,
		slot Slot,
		partySize int,
	) (int64, error)

	// -------- Booking (create / read / list) --------

	// CreateBookingChecked inserts the pending booking only if the
	// aggregate capacity check still passes inside the same
	// transaction; it fails with capacity_exhausted otherwise.
	CreateBookingChecked(
		ctx context.Context,
		b *models.Booking,
	) error

	BookingByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	BookingByReference(
		ctx context.Context,
		reference string,
	) (*models.Booking, error)

	ListBookings(
		ctx context.Context,
		f BookingFilter,
	) ([]models.Booking, int64, error)

	// -------- Booking (state change) --------

	// ClaimTable performs the single conditional update that closes
	// the check-then-act window: the booking moves to confirmed with
	// the table assigned only if it is still pending and no other
	// pending/confirmed booking holds that table at the slot. It
	// reports whether the claim won.
	ClaimTable(
		ctx context.Context,
		bookingID uint,
		slot Slot,
		tableNumber int,
		now time.Time,
	) (bool, error)

	UpdateBookingStatus(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Customer ledger --------

	CustomerByPhone(
		ctx context.Context,
		phone string,
	) (*models.Customer, error)

	CustomerByEmail(
		ctx context.Context,
		email string,
	) (*models.Customer, error)

	CustomerByID(
		ctx context.Context,
		id uint,
	) (*models.Customer, error)

	// TouchCustomerForBooking atomically increments total_bookings
	// and refreshes name/email/last_visit for an existing phone, or
	// inserts a fresh record with total_bookings=1. Safe under
	// concurrent first sightings of the same phone.
	TouchCustomerForBooking(
		ctx context.Context,
		b *models.Booking,
	) (*models.Customer, error)

	// IncrementCustomerCounter adds one to the named counter column
	// as a store-side expression. It returns the refreshed record,
	// or nil (no error) when no customer matches the phone.
	IncrementCustomerCounter(
		ctx context.Context,
		phone string,
		column string,
	) (*models.Customer, error)

	// PromoteVIP flips vip_status to true only when it is currently
	// false and completed_bookings has reached the threshold; it
	// reports whether this call performed the flip.
	PromoteVIP(
		ctx context.Context,
		phone string,
		minCompleted int,
	) (bool, error)

	SetCustomerFlag(
		ctx context.Context,
		customerID uint,
		column string,
		value bool,
	) error

	ProblemCustomers(
		ctx context.Context,
		minBookings int,
		ratio float64,
	) ([]models.Customer, error)
}
