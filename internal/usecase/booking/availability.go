package booking

import (
	"context"
	"time"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/httperr"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

// Execute answers the three allocator questions for a slot in one
// shot. The answer is a soft quote for browsing clients: the
// authoritative check happens again inside create and confirm.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	slot domain.Slot,
	partySize int,
) (*domain.Availability, error) {

	if partySize <= 0 {
		return nil, httperr.ErrValidation("party_size")
	}
	if _, err := time.Parse("2006-01-02", slot.Date); err != nil {
		return nil, httperr.ErrValidation("date")
	}
	if _, err := time.Parse("15:04", slot.Time); err != nil {
		return nil, httperr.ErrValidation("time")
	}

	hasCapacity, err := uc.repo.CapacityAvailable(ctx, slot, partySize, 0)
	if err != nil {
		return nil, err
	}

	count, err := uc.repo.AvailableTableCount(ctx, slot, partySize)
	if err != nil {
		return nil, err
	}

	best, err := uc.repo.BestFitTable(ctx, slot, partySize)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		Slot:          slot,
		PartySize:     partySize,
		HasCapacity:   hasCapacity,
		QualifyingQty: count,
		BestFit:       best,
	}, nil
}
