package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
	"github.com/seatwise/reserver/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func activeStatuses() []string {
	return []string{
		string(domain.StatusPending),
		string(domain.StatusConfirmed),
	}
}

// --------------------------------------------------
// Location
// --------------------------------------------------

func (r *BookingGormRepository) LocationBySlug(
	ctx context.Context,
	slug string,
) (*models.Location, error) {

	var loc models.Location
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *BookingGormRepository) LocationByID(
	ctx context.Context,
	id uint,
) (*models.Location, error) {

	var loc models.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// --------------------------------------------------
// Allocator
// --------------------------------------------------

func (r *BookingGormRepository) CapacityAvailable(
	ctx context.Context,
	slot domain.Slot,
	partySize int,
	excludeBookingID uint,
) (bool, error) {

	totalCap, booked, err := r.slotSums(r.db.WithContext(ctx), slot, excludeBookingID)
	if err != nil {
		return false, err
	}

	return totalCap-booked >= int64(partySize), nil
}

// slotSums computes the aggregate seat supply and the seats already
// consumed by pending/confirmed bookings at the slot.
func (r *BookingGormRepository) slotSums(
	tx *gorm.DB,
	slot domain.Slot,
	excludeBookingID uint,
) (int64, int64, error) {

	tableQ := tx.Model(&models.Table{}).Where("is_available = ?", true)
	if slot.LocationID != nil {
		tableQ = tableQ.Where("location_id = ?", *slot.LocationID)
	}

	var totalCap int64
	if err := tableQ.
		Select("COALESCE(SUM(capacity), 0)").
		Scan(&totalCap).Error; err != nil {
		return 0, 0, err
	}

	bookingQ := tx.Model(&models.Booking{}).
		Where(
			"booking_date = ? AND booking_time = ? AND status IN ?",
			slot.Date, slot.Time, activeStatuses(),
		)
	if slot.LocationID != nil {
		bookingQ = bookingQ.Where("location_id = ?", *slot.LocationID)
	}
	if excludeBookingID != 0 {
		bookingQ = bookingQ.Where("id <> ?", excludeBookingID)
	}

	var booked int64
	if err := bookingQ.
		Select("COALESCE(SUM(guest_count), 0)").
		Scan(&booked).Error; err != nil {
		return 0, 0, err
	}

	return totalCap, booked, nil
}

// freeTableQuery builds the per-table predicate shared by BestFitTable
// and AvailableTableCount: available, big enough, and not already held
// by a pending/confirmed booking at the identical slot.
func (r *BookingGormRepository) freeTableQuery(
	ctx context.Context,
	slot domain.Slot,
	partySize int,
) *gorm.DB {

	q := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("is_available = ? AND capacity >= ?", true, partySize).
		Where(
			`NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.booking_date = ?
				  AND b.booking_time = ?
				  AND b.table_number = tables.table_number
				  AND (b.location_id = tables.location_id OR b.location_id IS NULL)
				  AND b.status IN ?)`,
			slot.Date, slot.Time, activeStatuses(),
		)

	if slot.LocationID != nil {
		q = q.Where("location_id = ?", *slot.LocationID)
	}

	return q
}

func (r *BookingGormRepository) BestFitTable(
	ctx context.Context,
	slot domain.Slot,
	partySize int,
) (*models.Table, error) {

	var t models.Table
	err := r.freeTableQuery(ctx, slot, partySize).
		Order("capacity ASC, table_number ASC").
		First(&t).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *BookingGormRepository) AvailableTableCount(
	ctx context.Context,
	slot domain.Slot,
	partySize int,
) (int64, error) {

	var count int64
	if err := r.freeTableQuery(ctx, slot, partySize).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --------------------------------------------------
// Booking (create / read / list)
// --------------------------------------------------

func (r *BookingGormRepository) CreateBookingChecked(
	ctx context.Context,
	b *models.Booking,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// Lock the competing rows so two requests racing for the last
		// seats at a slot serialize on postgres. SQLite (tests) has no
		// row locks and is single-writer anyway.
		slotQ := tx.Where(
			"booking_date = ? AND booking_time = ? AND status IN ?",
			b.BookingDate, b.BookingTime, activeStatuses(),
		)
		if b.LocationID != nil {
			slotQ = slotQ.Where("location_id = ?", *b.LocationID)
		}
		if tx.Dialector.Name() == "postgres" {
			slotQ = slotQ.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var competing []models.Booking
		if err := slotQ.Find(&competing).Error; err != nil {
			return err
		}

		booked := 0
		for _, c := range competing {
			booked += c.GuestCount
		}

		tableQ := tx.Model(&models.Table{}).Where("is_available = ?", true)
		if b.LocationID != nil {
			tableQ = tableQ.Where("location_id = ?", *b.LocationID)
		}

		var totalCap int64
		if err := tableQ.
			Select("COALESCE(SUM(capacity), 0)").
			Scan(&totalCap).Error; err != nil {
			return err
		}

		if totalCap-int64(booked) < int64(b.GuestCount) {
			return httperr.ErrBusiness(httperr.CodeCapacityExhausted)
		}

		return tx.Create(b).Error
	})
}

func (r *BookingGormRepository) BookingByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) BookingByReference(
	ctx context.Context,
	reference string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.BookingFilter,
) ([]models.Booking, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Booking{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateFrom != "" {
		q = q.Where("booking_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("booking_date <= ?", f.DateTo)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(
			"LOWER(customer_name) LIKE LOWER(?) OR customer_phone LIKE ? OR LOWER(customer_email) LIKE LOWER(?)",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var bookings []models.Booking
	if err := q.
		Order("booking_date DESC, booking_time DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) ClaimTable(
	ctx context.Context,
	bookingID uint,
	slot domain.Slot,
	tableNumber int,
	now time.Time,
) (bool, error) {

	query := `
		UPDATE bookings
		SET status = ?, table_number = ?, confirmed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.id <> ?
			  AND b.booking_date = ?
			  AND b.booking_time = ?
			  AND b.table_number = ?
			  AND b.status IN (?, ?)`

	args := []any{
		string(domain.StatusConfirmed), tableNumber, now, now,
		bookingID, string(domain.StatusPending),
		bookingID, slot.Date, slot.Time, tableNumber,
		string(domain.StatusPending), string(domain.StatusConfirmed),
	}

	if slot.LocationID != nil {
		query += `
			  AND (b.location_id = ? OR b.location_id IS NULL)`
		args = append(args, *slot.LocationID)
	}
	query += ")"

	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *BookingGormRepository) UpdateBookingStatus(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Customer ledger
// --------------------------------------------------

func (r *BookingGormRepository) CustomerByPhone(
	ctx context.Context,
	phone string,
) (*models.Customer, error) {

	var c models.Customer
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) CustomerByEmail(
	ctx context.Context,
	email string,
) (*models.Customer, error) {

	var c models.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) CustomerByID(
	ctx context.Context,
	id uint,
) (*models.Customer, error) {

	var c models.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) TouchCustomerForBooking(
	ctx context.Context,
	b *models.Booking,
) (*models.Customer, error) {

	touch := func() (int64, error) {
		res := r.db.WithContext(ctx).
			Model(&models.Customer{}).
			Where("phone = ?", b.CustomerPhone).
			Updates(map[string]any{
				"total_bookings": gorm.Expr("total_bookings + 1"),
				"name":           b.CustomerName,
				"email":          b.CustomerEmail,
				"last_visit":     b.BookingDate,
			})
		return res.RowsAffected, res.Error
	}

	rows, err := touch()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		c := models.Customer{
			Phone:           b.CustomerPhone,
			Email:           b.CustomerEmail,
			Name:            b.CustomerName,
			LocationID:      b.LocationID,
			TotalBookings:   1,
			FirstVisit:      b.BookingDate,
			LastVisit:       b.BookingDate,
			PreferredSource: b.BookingSource,
		}

		if err := r.db.WithContext(ctx).Create(&c).Error; err == nil {
			return &c, nil
		}

		// Lost the first-sighting race against the unique phone
		// index: the row exists now, so the increment must land.
		if _, err := touch(); err != nil {
			return nil, err
		}
	}

	return r.CustomerByPhone(ctx, b.CustomerPhone)
}

var counterColumns = map[string]bool{
	"completed_bookings": true,
	"cancelled_bookings": true,
	"no_shows":           true,
}

func (r *BookingGormRepository) IncrementCustomerCounter(
	ctx context.Context,
	phone string,
	column string,
) (*models.Customer, error) {

	if !counterColumns[column] {
		return nil, fmt.Errorf("unknown ledger counter %q", column)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("phone = ?", phone).
		Update(column, gorm.Expr(column+" + 1"))

	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return r.CustomerByPhone(ctx, phone)
}

func (r *BookingGormRepository) PromoteVIP(
	ctx context.Context,
	phone string,
	minCompleted int,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where(
			"phone = ? AND vip_status = ? AND completed_bookings >= ?",
			phone, false, minCompleted,
		).
		Update("vip_status", true)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

var flagColumns = map[string]bool{
	"vip_status":  true,
	"blacklisted": true,
}

func (r *BookingGormRepository) SetCustomerFlag(
	ctx context.Context,
	customerID uint,
	column string,
	value bool,
) error {

	if !flagColumns[column] {
		return fmt.Errorf("unknown customer flag %q", column)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update(column, value)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingGormRepository) ProblemCustomers(
	ctx context.Context,
	minBookings int,
	ratio float64,
) ([]models.Customer, error) {

	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Where(
			"total_bookings >= ? AND (no_shows + cancelled_bookings) * 1.0 / total_bookings > ?",
			minBookings, ratio,
		).
		Order("no_shows + cancelled_bookings DESC").
		Find(&customers).Error; err != nil {
		return nil, err
	}

	return customers, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
