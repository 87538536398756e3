package dto

import "time"

type BookingListDTO struct {
	ID            uint      `json:"id"`
	Reference     string    `json:"reference"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	GuestCount    int       `json:"guest_count"`
	BookingDate   string    `json:"booking_date"`
	BookingTime   string    `json:"booking_time"`
	TableNumber   *int      `json:"table_number"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}
