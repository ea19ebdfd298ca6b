package model

import "time"

// Receipt is a point-in-time aggregation of a farmer's full transaction
// history. Receipts are recomputable snapshots, appended and never updated.
type Receipt struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FarmerID       uint      `json:"farmer_id" gorm:"index;not null"`
	Date           time.Time `json:"date" gorm:"type:date"`
	SeedCostDebit  float64   `json:"seed_cost_debit"`
	RiceSaleCredit float64   `json:"rice_sale_credit"`
	FinalBalance   float64   `json:"final_balance"`
	CreatedAt      time.Time `json:"created_at"`

	Farmer Farmer `json:"-" gorm:"foreignKey:FarmerID"`
}
