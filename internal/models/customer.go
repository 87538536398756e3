package models

import "time"

// Customer is the per-phone aggregate ledger record. The counters are
// only ever changed through atomic store-side increments.
type Customer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Phone string `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email string `gorm:"size:100" json:"email"`
	Name  string `gorm:"size:100" json:"name"`

	LocationID *uint `gorm:"index" json:"location_id"`

	TotalBookings     int `gorm:"default:0" json:"total_bookings"`
	CompletedBookings int `gorm:"default:0" json:"completed_bookings"`
	CancelledBookings int `gorm:"default:0" json:"cancelled_bookings"`
	NoShows           int `gorm:"default:0" json:"no_shows"`

	FirstVisit string `gorm:"size:10" json:"first_visit"` // YYYY-MM-DD
	LastVisit  string `gorm:"size:10" json:"last_visit"`

	VIPStatus   bool `gorm:"column:vip_status;default:false" json:"vip_status"`
	Blacklisted bool `gorm:"default:false" json:"blacklisted"`

	CustomerNotes   string `gorm:"size:500" json:"customer_notes"`
	PreferredSource string `gorm:"size:50" json:"preferred_source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
