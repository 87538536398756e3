package booking

import (
	"context"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/models"
)

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) Execute(
	ctx context.Context,
	f domain.BookingFilter,
) ([]models.Booking, int64, error) {
	return uc.repo.ListBookings(ctx, f)
}
