package models

import "time"

// Table is a physical seating unit. TableNumber is unique within a
// location; IsAvailable is an administrative toggle independent of
// booking state.
type Table struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocationID uint     `gorm:"uniqueIndex:idx_location_table" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	TableNumber int  `gorm:"uniqueIndex:idx_location_table;not null" json:"table_number"`
	Capacity    int  `gorm:"not null" json:"capacity"`
	IsAvailable bool `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
