package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/seatwise/reserver/internal/db"
	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(
		sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{},
	)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))
	return db
}

func seedTable(t *testing.T, db *gorm.DB, number, capacity int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Table{
		LocationID:  1,
		TableNumber: number,
		Capacity:    capacity,
		IsAvailable: true,
	}).Error)
}

func seedBooking(t *testing.T, db *gorm.DB, status string, guests int, tableNumber *int) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Reference:     uuid.NewString(),
		CustomerName:  "Dana",
		CustomerPhone: "555-" + uuid.NewString()[:8],
		CustomerEmail: "dana@example.com",
		GuestCount:    guests,
		BookingDate:   "2026-09-01",
		BookingTime:   "19:00",
		Status:        status,
		TableNumber:   tableNumber,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func slot() domain.Slot {
	return domain.Slot{Date: "2026-09-01", Time: "19:00"}
}

// --------------------------------------------------
// Allocator
// --------------------------------------------------

func TestBestFitTablePicksSmallestSufficient(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 2)
	seedTable(t, db, 2, 2)
	seedTable(t, db, 3, 4)
	seedTable(t, db, 4, 6)

	best, err := repo.BestFitTable(context.Background(), slot(), 3)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 3, best.TableNumber)
	assert.Equal(t, 4, best.Capacity)
}

func TestBestFitTableTieBreaksOnLowestNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 7, 4)
	seedTable(t, db, 2, 4)

	best, err := repo.BestFitTable(context.Background(), slot(), 4)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 2, best.TableNumber)
}

func TestBestFitTableNilWhenNothingFits(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 2)
	seedTable(t, db, 2, 4)

	best, err := repo.BestFitTable(context.Background(), slot(), 10)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestBestFitTableSkipsHeldTables(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 3, 4)
	seedTable(t, db, 4, 6)

	held := 3
	seedBooking(t, db, "confirmed", 3, &held)

	best, err := repo.BestFitTable(context.Background(), slot(), 3)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 4, best.TableNumber)

	// A different slot does not hold the table.
	otherSlot := domain.Slot{Date: "2026-09-01", Time: "21:00"}
	best, err = repo.BestFitTable(context.Background(), otherSlot, 3)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 3, best.TableNumber)
}

func TestAvailableTableCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 2)
	seedTable(t, db, 2, 2)
	seedTable(t, db, 3, 4)
	seedTable(t, db, 4, 6)

	count, err := repo.AvailableTableCount(context.Background(), slot(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCapacityAvailableAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 2)
	seedTable(t, db, 2, 6)

	seedBooking(t, db, "confirmed", 6, nil)

	ok, err := repo.CapacityAvailable(context.Background(), slot(), 2, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CapacityAvailable(context.Background(), slot(), 3, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCapacityAvailableIgnoresTerminalBookings(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 4)

	seedBooking(t, db, "cancelled", 4, nil)
	seedBooking(t, db, "no-show", 4, nil)

	ok, err := repo.CapacityAvailable(context.Background(), slot(), 4, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

// --------------------------------------------------
// Create / claim
// --------------------------------------------------

func TestCreateBookingCheckedExhaustsCapacity(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 4)
	seedBooking(t, db, "confirmed", 3, nil)

	over := &models.Booking{
		Reference:     uuid.NewString(),
		CustomerName:  "Lee",
		CustomerPhone: "555-0001",
		GuestCount:    2,
		BookingDate:   "2026-09-01",
		BookingTime:   "19:00",
		Status:        "pending",
	}
	err := repo.CreateBookingChecked(context.Background(), over)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCapacityExhausted))

	fits := &models.Booking{
		Reference:     uuid.NewString(),
		CustomerName:  "Lee",
		CustomerPhone: "555-0001",
		GuestCount:    1,
		BookingDate:   "2026-09-01",
		BookingTime:   "19:00",
		Status:        "pending",
	}
	require.NoError(t, repo.CreateBookingChecked(context.Background(), fits))
	assert.NotZero(t, fits.ID)
}

func TestClaimTableSingleWinner(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 4)

	b1 := seedBooking(t, db, "pending", 2, nil)
	b2 := seedBooking(t, db, "pending", 2, nil)

	now := time.Now()

	won, err := repo.ClaimTable(context.Background(), b1.ID, slot(), 1, now)
	require.NoError(t, err)
	assert.True(t, won)

	// Same table at the same slot cannot be claimed twice.
	won, err = repo.ClaimTable(context.Background(), b2.ID, slot(), 1, now)
	require.NoError(t, err)
	assert.False(t, won)

	// The loser's row is untouched.
	var fresh models.Booking
	require.NoError(t, db.First(&fresh, b2.ID).Error)
	assert.Equal(t, "pending", fresh.Status)
	assert.Nil(t, fresh.TableNumber)
}

func TestClaimTableRequiresPendingBooking(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedTable(t, db, 1, 4)
	b := seedBooking(t, db, "cancelled", 2, nil)

	won, err := repo.ClaimTable(context.Background(), b.ID, slot(), 1, time.Now())
	require.NoError(t, err)
	assert.False(t, won)
}

// --------------------------------------------------
// Customer ledger
// --------------------------------------------------

func TestTouchCustomerForBooking(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	first := &models.Booking{
		CustomerName:  "Ana",
		CustomerPhone: "555-7000",
		CustomerEmail: "ana@example.com",
		BookingDate:   "2026-09-01",
		BookingSource: "website",
	}

	c, err := repo.TouchCustomerForBooking(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalBookings)
	assert.Equal(t, "2026-09-01", c.FirstVisit)
	assert.Equal(t, "2026-09-01", c.LastVisit)

	second := &models.Booking{
		CustomerName:  "Ana Maria",
		CustomerPhone: "555-7000",
		CustomerEmail: "ana@example.com",
		BookingDate:   "2026-10-15",
	}

	c, err = repo.TouchCustomerForBooking(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalBookings)
	assert.Equal(t, "Ana Maria", c.Name)
	assert.Equal(t, "2026-09-01", c.FirstVisit)
	assert.Equal(t, "2026-10-15", c.LastVisit)
}

func TestIncrementCustomerCounter(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	require.NoError(t, db.Create(&models.Customer{
		Phone:         "555-1000",
		TotalBookings: 1,
	}).Error)

	c, err := repo.IncrementCustomerCounter(context.Background(), "555-1000", "completed_bookings")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1, c.CompletedBookings)

	// Unknown phone is a silent no-op.
	c, err = repo.IncrementCustomerCounter(context.Background(), "555-9999", "completed_bookings")
	require.NoError(t, err)
	assert.Nil(t, c)

	// Arbitrary columns are rejected.
	_, err = repo.IncrementCustomerCounter(context.Background(), "555-1000", "vip_status")
	assert.Error(t, err)
}

func TestPromoteVIPFlipsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	require.NoError(t, db.Create(&models.Customer{
		Phone:             "555-2000",
		TotalBookings:     5,
		CompletedBookings: 5,
	}).Error)

	flipped, err := repo.PromoteVIP(context.Background(), "555-2000", 5)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.PromoteVIP(context.Background(), "555-2000", 5)
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestPromoteVIPBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	require.NoError(t, db.Create(&models.Customer{
		Phone:             "555-3000",
		TotalBookings:     4,
		CompletedBookings: 4,
	}).Error)

	flipped, err := repo.PromoteVIP(context.Background(), "555-3000", 5)
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestProblemCustomersQuery(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	require.NoError(t, db.Create(&models.Customer{
		Phone: "555-4000", TotalBookings: 4, NoShows: 2, CancelledBookings: 1,
	}).Error)
	require.NoError(t, db.Create(&models.Customer{
		Phone: "555-4001", TotalBookings: 4, NoShows: 2,
	}).Error)
	require.NoError(t, db.Create(&models.Customer{
		Phone: "555-4002", TotalBookings: 2, NoShows: 2,
	}).Error)

	customers, err := repo.ProblemCustomers(context.Background(), 3, 0.5)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "555-4000", customers[0].Phone)
}

func TestListBookingsFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingGormRepository(db)

	seedBooking(t, db, "pending", 2, nil)
	seedBooking(t, db, "confirmed", 2, nil)
	seedBooking(t, db, "cancelled", 2, nil)

	bookings, total, err := repo.ListBookings(context.Background(), domain.BookingFilter{
		Status: "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookings, 1)
	assert.Equal(t, "pending", bookings[0].Status)

	bookings, total, err = repo.ListBookings(context.Background(), domain.BookingFilter{
		Page:  1,
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, bookings, 2)
}
