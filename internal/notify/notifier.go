package notify

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/seatwise/reserver/internal/domain/booking"
	"github.com/seatwise/reserver/internal/event"
	"github.com/seatwise/reserver/internal/ledger"
	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/mailer"
	"github.com/seatwise/reserver/internal/models"
	"github.com/seatwise/reserver/internal/settings"
	"github.com/seatwise/reserver/internal/validators"
)

// Notifier emails staff when a booking belongs to a flagged customer
// (VIP or blacklisted). It subscribes to the lifecycle events and is
// strictly best-effort: a delivery failure is logged and never
// propagates into the transition that fired the event.
type Notifier struct {
	repo     domain.Repository
	ledger   *ledger.Service
	settings *settings.Service
	mailer   mailer.Mailer
}

func New(
	repo domain.Repository,
	ldg *ledger.Service,
	st *settings.Service,
	m mailer.Mailer,
) *Notifier {
	return &Notifier{
		repo:     repo,
		ledger:   ldg,
		settings: st,
		mailer:   m,
	}
}

func (n *Notifier) Register(bus *event.Bus) {
	bus.Subscribe(event.BookingCreated, n.onBookingEvent)
	bus.Subscribe(event.BookingConfirmed, n.onBookingEvent)
}

func (n *Notifier) onBookingEvent(ev event.Event) {
	if ev.Booking == nil {
		return
	}

	ctx := context.Background()
	b := ev.Booking

	c := ev.Customer
	if c == nil {
		var err error
		c, err = n.ledger.LookupForBooking(ctx, b)
		if err != nil {
			logging.Error.Printf("notify: customer lookup for booking %s: %v", b.Reference, err)
			return
		}
	}
	if c == nil {
		// First-time contact with no ledger record yet, nothing to flag.
		return
	}

	vip := c.VIPStatus && n.settings.GetBool(ctx, models.SettingNotifyVIP, true)
	blacklisted := c.Blacklisted && n.settings.GetBool(ctx, models.SettingNotifyBlacklist, true)
	if !vip && !blacklisted {
		return
	}

	recipients := n.recipients(ctx, b, vip, blacklisted)
	if len(recipients) == 0 {
		logging.Info.Printf("notify: no valid recipients for booking %s, skipping", b.Reference)
		return
	}

	msg := mailer.Message{
		Recipients: recipients,
		Subject:    subject(ev.Type, b, vip, blacklisted),
		Body:       body(b, c, vip, blacklisted),
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		logging.Error.Printf("notify: send for booking %s: %v", b.Reference, err)
	}
}

// recipients merges the global admin address, the location's address
// and the per-flag lists, deduplicated case-insensitively and filtered
// down to syntactically valid addresses.
func (n *Notifier) recipients(
	ctx context.Context,
	b *models.Booking,
	vip bool,
	blacklisted bool,
) []string {

	var candidates []string

	if admin := n.settings.Get(ctx, models.SettingAdminEmail, ""); admin != "" {
		candidates = append(candidates, admin)
	}

	if b.LocationID != nil {
		loc, err := n.repo.LocationByID(ctx, *b.LocationID)
		if err != nil {
			logging.Error.Printf("notify: location %d lookup: %v", *b.LocationID, err)
		} else if loc.Email != "" {
			candidates = append(candidates, loc.Email)
		}
	}

	if vip {
		candidates = append(candidates, n.settings.Recipients(ctx, models.SettingVIPRecipients)...)
	}
	if blacklisted {
		candidates = append(candidates, n.settings.Recipients(ctx, models.SettingBlacklistRecipients)...)
	}

	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, addr := range candidates {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		if !validators.IsEmailSyntaxValid(addr) {
			logging.Error.Printf("notify: dropping invalid recipient %q", addr)
			continue
		}
		out = append(out, addr)
	}
	return out
}

func subject(t event.Type, b *models.Booking, vip, blacklisted bool) string {
	action := "New booking"
	if t == event.BookingConfirmed {
		action = "Booking confirmed"
	}

	var tags []string
	if vip {
		tags = append(tags, "VIP")
	}
	if blacklisted {
		tags = append(tags, "BLACKLISTED")
	}

	return fmt.Sprintf("[%s] %s %s - %s %s",
		strings.Join(tags, "/"),
		action,
		b.Reference,
		b.BookingDate,
		b.BookingTime,
	)
}

func body(b *models.Booking, c *models.Customer, vip, blacklisted bool) string {
	var sb strings.Builder

	if vip {
		sb.WriteString("This booking belongs to a VIP customer.\n")
	}
	if blacklisted {
		sb.WriteString("WARNING: this booking belongs to a blacklisted customer.\n")
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Reference:  %s\n", b.Reference)
	fmt.Fprintf(&sb, "Name:       %s\n", b.CustomerName)
	fmt.Fprintf(&sb, "Phone:      %s\n", b.CustomerPhone)
	if b.CustomerEmail != "" {
		fmt.Fprintf(&sb, "Email:      %s\n", b.CustomerEmail)
	}
	fmt.Fprintf(&sb, "Date:       %s %s\n", b.BookingDate, b.BookingTime)
	fmt.Fprintf(&sb, "Party size: %d\n", b.GuestCount)
	if b.TableNumber != nil {
		fmt.Fprintf(&sb, "Table:      %d\n", *b.TableNumber)
	}
	if b.SpecialRequests != "" {
		fmt.Fprintf(&sb, "Requests:   %s\n", b.SpecialRequests)
	}

	sb.WriteString("\nCustomer history:\n")
	fmt.Fprintf(&sb, "  Total bookings: %d\n", c.TotalBookings)
	fmt.Fprintf(&sb, "  Completed:      %d\n", c.CompletedBookings)
	fmt.Fprintf(&sb, "  Cancelled:      %d\n", c.CancelledBookings)
	fmt.Fprintf(&sb, "  No-shows:       %d\n", c.NoShows)

	return sb.String()
}
