package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/models"
)

const (
	// VIPCompletedThreshold is the completed-booking count at which a
	// customer is automatically promoted to VIP, exactly once.
	VIPCompletedThreshold = 5

	// ProblemMinBookings and ProblemRatioThreshold define the single
	// canonical problem-customer rule: at least this many bookings
	// and a (no_shows + cancellations) / total ratio strictly above
	// the threshold. The same constants back the live check and the
	// reporting query.
	ProblemMinBookings    = 3
	ProblemRatioThreshold = 0.5
)

// Service maintains the per-customer aggregate counters and derives
// the VIP and problem-customer flags from them. Every counter change
// is a store-side atomic increment; a missing customer record never
// fails the caller's booking transition.
type Service struct {
	repo domain.Repository
	bus  *event.Bus
}

func New(repo domain.Repository, bus *event.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// UpsertFromBooking records a new booking against the customer's
// ledger entry: first sighting of a phone creates the record with
// total_bookings=1, otherwise the total is incremented and
// name/email/last_visit refreshed.
func (s *Service) UpsertFromBooking(
	ctx context.Context,
	b *models.Booking,
) (*models.Customer, error) {
	return s.repo.TouchCustomerForBooking(ctx, b)
}

// OnCompleted increments completed_bookings and runs the auto-VIP
// rule. The upgrade event fires at most once per customer; once
// vip_status is true the rule never re-fires.
func (s *Service) OnCompleted(ctx context.Context, phone string) error {
	c, err := s.repo.IncrementCustomerCounter(ctx, phone, "completed_bookings")
	if err != nil {
		return err
	}
	if c == nil {
		// Ledger record deleted out-of-band; the booking transition
		// stays authoritative.
		return nil
	}

	promoted, err := s.repo.PromoteVIP(ctx, phone, VIPCompletedThreshold)
	if err != nil {
		return err
	}
	if promoted {
		c.VIPStatus = true
		s.bus.Publish(event.Event{
			Type:     event.CustomerUpgradedVIP,
			Customer: c,
		})
	}

	return nil
}

// OnCancelled increments cancelled_bookings and runs the
// problem-customer rule.
func (s *Service) OnCancelled(ctx context.Context, phone string) error {
	return s.bumpAndCheckProblem(ctx, phone, "cancelled_bookings")
}

// OnNoShow increments no_shows and runs the problem-customer rule.
func (s *Service) OnNoShow(ctx context.Context, phone string) error {
	return s.bumpAndCheckProblem(ctx, phone, "no_shows")
}

func (s *Service) bumpAndCheckProblem(
	ctx context.Context,
	phone string,
	column string,
) error {

	c, err := s.repo.IncrementCustomerCounter(ctx, phone, column)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	if IsProblem(c) {
		s.bus.Publish(event.Event{
			Type:     event.ProblematicCustomer,
			Customer: c,
		})
	}

	return nil
}

// IsProblem applies the canonical problem-customer rule to a ledger
// record.
func IsProblem(c *models.Customer) bool {
	if c.TotalBookings < ProblemMinBookings {
		return false
	}
	bad := float64(c.NoShows + c.CancelledBookings)
	return bad/float64(c.TotalBookings) > ProblemRatioThreshold
}

// SetVIP is the manual administrative override, independent of the
// automatic promotion rule.
func (s *Service) SetVIP(ctx context.Context, customerID uint, vip bool) error {
	return s.repo.SetCustomerFlag(ctx, customerID, "vip_status", vip)
}

// SetBlacklist is the manual administrative override.
func (s *Service) SetBlacklist(ctx context.Context, customerID uint, blacklisted bool) error {
	return s.repo.SetCustomerFlag(ctx, customerID, "blacklisted", blacklisted)
}

// ProblemCustomers lists every ledger record currently tripping the
// canonical rule, for reporting.
func (s *Service) ProblemCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo.ProblemCustomers(ctx, ProblemMinBookings, ProblemRatioThreshold)
}

// LookupForBooking resolves the ledger record for a booking's contact
// identity: phone first, email as fallback. Returns nil without error
// when neither matches.
func (s *Service) LookupForBooking(
	ctx context.Context,
	b *models.Booking,
) (*models.Customer, error) {

	c, err := s.repo.CustomerByPhone(ctx, b.CustomerPhone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c, err = s.repo.CustomerByEmail(ctx, b.CustomerEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
