package booking

import "github.com/seatwise/reserver/internal/models"

// Slot is a (date, time) pair at which bookings compete for capacity,
// optionally scoped to a location.
type Slot struct {
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	LocationID *uint
}

// BookingFilter narrows a booking listing. Zero values mean "no
// filter"; Page/Limit are normalized by the repository.
type BookingFilter struct {
	Status     string
	DateFrom   string
	DateTo     string
	LocationID *uint
	Search     string // matches customer name, phone or email
	Page       int
	Limit      int
}

// Availability is the request-time soft answer for a slot: whether the
// aggregate capacity could hold the party, how many individual tables
// would qualify, and the table a confirmation would pick right now.
// The two predicates can legitimately disagree; see BestFitTable.
type Availability struct {
	Slot          Slot          `json:"-"`
	PartySize     int           `json:"party_size"`
	HasCapacity   bool          `json:"has_capacity"`
	QualifyingQty int64         `json:"qualifying_tables"`
	BestFit       *models.Table `json:"best_fit,omitempty"`
}
