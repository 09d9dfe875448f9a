package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment gateway payment attempt. Holds the cart snapshot taken at
// initiation; orders are only created after the gateway confirms.
type Payment struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `gorm:"index;not null" json:"user_id"`
	ProviderOrderID   string         `gorm:"uniqueIndex;not null" json:"provider_order_id"` // gateway order handle
	ProviderPaymentID string         `gorm:"index" json:"provider_payment_id"`
	Receipt           string         `gorm:"type:varchar(64)" json:"receipt"`
	Amount            Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency          string         `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`
	Status            string         `gorm:"index;not null" json:"status"` // created/completed/failed
	CartSnapshot      string         `gorm:"type:text" json:"-"`           // serialized checkout groups
	OrderIDs          UintArray      `gorm:"type:json" json:"order_ids"`   // orders created on confirm
	ProviderPayload   JSON           `gorm:"type:json" json:"provider_payload"`
	FailReason        string         `gorm:"type:varchar(200)" json:"fail_reason,omitempty"`
	PaidAt            *time.Time     `gorm:"index" json:"paid_at"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName maps the model to its table.
func (Payment) TableName() string {
	return "payments"
}
