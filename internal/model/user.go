package model

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// User represents the user model stored in the database. Username and email
// uniqueness is enforced among live rows only; deleted_at (0 while live) is
// part of both indexes so a removed account's identifiers can be reassigned.
type User struct {
	ID        uint                  `json:"id" gorm:"primaryKey"`
	Username  string                `json:"username" gorm:"type:varchar(100);uniqueIndex:idx_user_username"`
	Email     string                `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_user_email"`
	Password  string                `json:"-" gorm:"type:varchar(255)"`
	FullName  string                `json:"full_name" gorm:"type:varchar(100)"`
	Active    bool                  `json:"active" gorm:"default:true"`
	Role      string                `json:"role" gorm:"type:varchar(50);not null"`
	CompanyID uint                  `json:"company_id" gorm:"index;not null"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	DeletedAt soft_delete.DeletedAt `json:"-" gorm:"softDelete:milli;uniqueIndex:idx_user_username;uniqueIndex:idx_user_email"`

	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
}
