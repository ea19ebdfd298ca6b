package model

import "time"

// HarvestEntry records produce returned by a farmer. Weight and amount are
// computed on creation: total_weight_quintals = bags * net kg per bag / 100,
// total_amount = total_weight_quintals * rate per quintal.
type HarvestEntry struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	FarmerID            uint      `json:"farmer_id" gorm:"index;not null"`
	Date                time.Time `json:"date" gorm:"type:date"`
	NumBagsReturned     int       `json:"num_bags_returned"`
	NetWeightPerBagKg   float64   `json:"net_weight_per_bag_kg"`
	TotalWeightQuintals float64   `json:"total_weight_quintals"`
	RatePerQuintal      float64   `json:"rate_per_quintal"`
	TotalAmount         float64   `json:"total_amount"`
	CreatedAt           time.Time `json:"created_at"`

	Farmer Farmer `json:"-" gorm:"foreignKey:FarmerID"`
}
