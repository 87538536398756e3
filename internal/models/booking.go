package models

import "time"

// Booking is a reservation request. TableNumber stays nil while the
// booking is pending and is set exactly once, on confirmation.
type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	LocationID *uint     `gorm:"index" json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CustomerName  string `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:20;not null;index" json:"customer_phone"`
	CustomerEmail string `gorm:"size:100;not null" json:"customer_email"`

	GuestCount  int    `gorm:"not null" json:"guest_count"`
	BookingDate string `gorm:"size:10;not null;index:idx_booking_slot" json:"booking_date"` // YYYY-MM-DD
	BookingTime string `gorm:"size:5;not null;index:idx_booking_slot" json:"booking_time"`  // HH:MM

	TableNumber *int `json:"table_number"`

	Status        string `gorm:"size:20;default:'pending';index:idx_booking_slot" json:"status"`
	BookingSource string `gorm:"size:50;default:'website'" json:"booking_source"`

	SpecialRequests string `gorm:"size:500" json:"special_requests"`
	AdminNotes      string `gorm:"size:500" json:"admin_notes"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	NoShowAt    *time.Time `json:"no_show_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
