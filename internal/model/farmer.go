package model

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// Farmer belongs to exactly one company. Mobile numbers are unique per
// company, not globally, hence the composite unique index over
// (company_id, mobile_number). DeletedAt is part of every unique index so a
// soft-deleted farmer frees its mobile number and aadhaar for re-registration
// (live rows carry deleted_at = 0 and still collide with each other).
type Farmer struct {
	ID            uint                  `json:"id" gorm:"primaryKey"`
	Name          string                `json:"name" gorm:"type:varchar(100);index"`
	Village       string                `json:"village" gorm:"type:varchar(100)"`
	MobileNumber  string                `json:"mobile_number" gorm:"type:varchar(20);uniqueIndex:idx_farmer_company_mobile"`
	AadhaarNumber *string               `json:"aadhaar_number,omitempty" gorm:"type:varchar(20);uniqueIndex:idx_farmer_aadhaar"`
	FarmAreaAcres float64               `json:"farm_area_acres"`
	CompanyID     uint                  `json:"company_id" gorm:"uniqueIndex:idx_farmer_company_mobile;not null"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     soft_delete.DeletedAt `json:"-" gorm:"softDelete:milli;uniqueIndex:idx_farmer_company_mobile;uniqueIndex:idx_farmer_aadhaar"`

	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
}
