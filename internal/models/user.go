package models

import (
	"time"

	"gorm.io/gorm"
)

// User account table.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	DisplayName  string         `gorm:"default:''" json:"display_name"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"-"`
	Status       string         `gorm:"default:'active'" json:"status"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName maps the model to its table.
func (User) TableName() string {
	return "users"
}
