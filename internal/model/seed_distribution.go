package model

import "time"

// SeedDistribution records seed bags handed to a farmer. TotalAmount is
// computed on creation and never mutated independently.
type SeedDistribution struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FarmerID     uint      `json:"farmer_id" gorm:"index;not null"`
	Date         time.Time `json:"date" gorm:"type:date"`
	NumBagsGiven int       `json:"num_bags_given"`
	RatePerBag   float64   `json:"rate_per_bag"`
	TotalAmount  float64   `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`

	Farmer Farmer `json:"-" gorm:"foreignKey:FarmerID"`
}
