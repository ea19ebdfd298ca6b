package model

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// Company is the tenancy root. Every user and farmer belongs to exactly one
// company, and transactional records are scoped to a company through their
// farmer. The name index includes deleted_at (0 for live rows) so a deleted
// company's name can be reused while live names stay unique.
type Company struct {
	ID            uint                  `json:"id" gorm:"primaryKey"`
	Name          string                `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_company_name"`
	Address       string                `json:"address" gorm:"type:text"`
	ContactPerson string                `json:"contact_person" gorm:"type:varchar(100)"`
	PhoneNumber   string                `json:"phone_number" gorm:"type:varchar(20)"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     soft_delete.DeletedAt `json:"-" gorm:"softDelete:milli;uniqueIndex:idx_company_name"`
}
