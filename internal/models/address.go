package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Address delivery address owned by a user.
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	Label      string         `gorm:"type:varchar(50)" json:"label"` // home/work/other
	Line1      string         `gorm:"type:varchar(200);not null" json:"line1"`
	Line2      string         `gorm:"type:varchar(200)" json:"line2"`
	Landmark   string         `gorm:"type:varchar(200)" json:"landmark"`
	City       string         `gorm:"type:varchar(100)" json:"city"`
	Pincode    string         `gorm:"type:varchar(10)" json:"pincode"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified bool           `gorm:"not null;default:false" json:"is_verified"` // verified by ops before first delivery
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName maps the model to its table.
func (Address) TableName() string {
	return "addresses"
}

// FullText renders the single-line form snapshotted onto orders.
func (a *Address) FullText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.Pincode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
