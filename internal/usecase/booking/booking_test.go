package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/audit"
	dbpkg "github.com/seatwise/reserver/internal/db"
	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/httperr"
	infraRepo "github.com/seatwise/reserver/internal/infra/repository"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/models"
)

type fixture struct {
	db  *gorm.DB
	bus *event.Bus

	create   *CreateBooking
	confirm  *ConfirmBooking
	cancel   *CancelBooking
	complete *CompleteBooking
	noShow   *MarkNoShow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(
		sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{},
	)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	repo := infraRepo.NewBookingGormRepository(db)
	bus := event.NewBus()
	ldg := ledger.New(repo, bus)
	dispatcher := audit.NewDispatcher(audit.New(db))

	return &fixture{
		db:       db,
		bus:      bus,
		create:   NewCreateBooking(repo, ldg, bus, dispatcher),
		confirm:  NewConfirmBooking(repo, bus, dispatcher),
		cancel:   NewCancelBooking(repo, ldg, dispatcher),
		complete: NewCompleteBooking(repo, ldg, dispatcher),
		noShow:   NewMarkNoShow(repo, ldg, dispatcher),
	}
}

func (f *fixture) seedTable(t *testing.T, number, capacity int) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Table{
		LocationID:  1,
		TableNumber: number,
		Capacity:    capacity,
		IsAvailable: true,
	}).Error)
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		CustomerName:  "Maya",
		CustomerPhone: "555-6000",
		CustomerEmail: "maya@example.com",
		GuestCount:    2,
		Date:          "2027-05-20",
		Time:          "19:00",
	}
}

// --------------------------------------------------
// Create
// --------------------------------------------------

func TestCreateBookingValidatesInput(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"missing name", func(in *CreateBookingInput) { in.CustomerName = "" }},
		{"missing phone", func(in *CreateBookingInput) { in.CustomerPhone = "" }},
		{"missing email", func(in *CreateBookingInput) { in.CustomerEmail = "" }},
		{"bad email", func(in *CreateBookingInput) { in.CustomerEmail = "not an email" }},
		{"zero guests", func(in *CreateBookingInput) { in.GuestCount = 0 }},
		{"bad date", func(in *CreateBookingInput) { in.Date = "20-05-2027" }},
		{"bad time", func(in *CreateBookingInput) { in.Time = "7pm" }},
		{"past slot", func(in *CreateBookingInput) { in.Date = "2020-01-01" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := f.create.Execute(context.Background(), in)
			assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	var created []event.Event
	f.bus.Subscribe(event.BookingCreated, func(ev event.Event) {
		created = append(created, ev)
	})

	b, err := f.create.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "pending", b.Status)
	assert.NotEmpty(t, b.Reference)
	assert.Nil(t, b.TableNumber)

	// Ledger saw the booking.
	var c models.Customer
	require.NoError(t, f.db.Where("phone = ?", "555-6000").First(&c).Error)
	assert.Equal(t, 1, c.TotalBookings)

	require.Len(t, created, 1)
	assert.Equal(t, b.Reference, created[0].Booking.Reference)
	require.NotNil(t, created[0].Customer)
}

func TestCreateBookingCapacityExhausted(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 2)

	in := validInput()
	in.GuestCount = 4

	_, err := f.create.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCapacityExhausted))

	// Pending bookings consume aggregate capacity for later requests.
	in = validInput()
	_, err = f.create.Execute(context.Background(), in)
	require.NoError(t, err)

	in = validInput()
	in.CustomerPhone = "555-6001"
	in.GuestCount = 1
	_, err = f.create.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCapacityExhausted))
}

// --------------------------------------------------
// Confirm
// --------------------------------------------------

func TestConfirmAssignsBestFit(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 2)
	f.seedTable(t, 2, 4)
	f.seedTable(t, 3, 6)

	in := validInput()
	in.GuestCount = 3
	b, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)

	var confirmed []event.Event
	f.bus.Subscribe(event.BookingConfirmed, func(ev event.Event) {
		confirmed = append(confirmed, ev)
	})

	out, err := f.confirm.Execute(context.Background(), b.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, "confirmed", out.Status)
	require.NotNil(t, out.TableNumber)
	assert.Equal(t, 2, *out.TableNumber)
	require.NotNil(t, out.ConfirmedAt)
	require.Len(t, confirmed, 1)

	// Confirming again is a conflict.
	_, err = f.confirm.Execute(context.Background(), b.ID, nil)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict))
}

func TestConfirmWithoutFittingTable(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 6)

	in := validInput()
	in.GuestCount = 4
	b, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)

	out, err := f.confirm.Execute(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *out.TableNumber)

	// A second party passes the aggregate check at creation time but
	// no single table is left for it.
	in = validInput()
	in.CustomerPhone = "555-6002"
	in.GuestCount = 2
	b2, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)

	_, err = f.confirm.Execute(context.Background(), b2.ID, nil)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCapacityExhausted))
}

func TestTransitionsOnMissingBookingConflict(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		run  func(context.Context, uint, *uint) (*models.Booking, error)
	}{
		{"confirm", f.confirm.Execute},
		{"cancel", f.cancel.Execute},
		{"complete", f.complete.Execute},
		{"no-show", f.noShow.Execute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.run(context.Background(), 9999, nil)
			assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict), "got %v", err)
		})
	}
}

// contestedRepo loses every table claim, as if a racing confirmation
// always lands first.
type contestedRepo struct {
	domain.Repository
}

func (contestedRepo) ClaimTable(
	ctx context.Context,
	bookingID uint,
	slot domain.Slot,
	tableNumber int,
	now time.Time,
) (bool, error) {
	return false, nil
}

func TestConfirmGivesUpAfterContestedClaims(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	b, err := f.create.Execute(context.Background(), validInput())
	require.NoError(t, err)

	repo := contestedRepo{Repository: infraRepo.NewBookingGormRepository(f.db)}
	confirm := NewConfirmBooking(repo, f.bus, audit.NewDispatcher(audit.New(f.db)))

	_, err = confirm.Execute(context.Background(), b.ID, nil)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCapacityExhausted), "got %v", err)
}

// --------------------------------------------------
// Terminal transitions + ledger
// --------------------------------------------------

func TestCancelIncrementsLedger(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	b, err := f.create.Execute(context.Background(), validInput())
	require.NoError(t, err)

	out, err := f.cancel.Execute(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)
	require.NotNil(t, out.CancelledAt)

	var c models.Customer
	require.NoError(t, f.db.Where("phone = ?", "555-6000").First(&c).Error)
	assert.Equal(t, 1, c.CancelledBookings)

	// Terminal: nothing else may follow.
	_, err = f.complete.Execute(context.Background(), b.ID, nil)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict))
}

func TestCompleteDrivesAutoVIP(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	require.NoError(t, f.db.Create(&models.Customer{
		Phone:             "555-6000",
		TotalBookings:     5,
		CompletedBookings: ledger.VIPCompletedThreshold - 1,
	}).Error)

	var upgrades []event.Event
	f.bus.Subscribe(event.CustomerUpgradedVIP, func(ev event.Event) {
		upgrades = append(upgrades, ev)
	})

	b, err := f.create.Execute(context.Background(), validInput())
	require.NoError(t, err)

	out, err := f.complete.Execute(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Status)

	require.Len(t, upgrades, 1)
	assert.True(t, upgrades[0].Customer.VIPStatus)
}

func TestNoShowIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.seedTable(t, 1, 4)

	b, err := f.create.Execute(context.Background(), validInput())
	require.NoError(t, err)

	out, err := f.noShow.Execute(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "no-show", out.Status)
	require.NotNil(t, out.NoShowAt)

	var c models.Customer
	require.NoError(t, f.db.Where("phone = ?", "555-6000").First(&c).Error)
	assert.Equal(t, 1, c.NoShows)

	_, err = f.cancel.Execute(context.Background(), b.ID, nil)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeResourceConflict))
}
