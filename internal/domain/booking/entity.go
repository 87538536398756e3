package booking

import (
	"time"

	"github.com/seatwise/reserver/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Confirm assigns a table and moves the booking to confirmed. The
// caller is responsible for having chosen a table whose capacity fits
// the party; persistence must happen through a conditional claim so a
// racing confirmation cannot double-allocate the table.
func Confirm(b *models.Booking, tableNumber int, now time.Time) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	b.TableNumber = &tableNumber
	b.ConfirmedAt = &now
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

func MarkNoShow(b *models.Booking, now time.Time) error {
	if err := CanMarkNoShow(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusNoShow)
	b.NoShowAt = &now
	return nil
}
