package models

import (
	"time"

	"gorm.io/gorm"
)

// Order a meal order for one delivery date, meal type and address.
// Address text and landmark are snapshotted at placement so later edits to
// the address book never rewrite delivery history.
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	Status          string         `gorm:"index;not null" json:"status"`         // pending/confirmed/preparing/out_for_delivery/delivered/cancelled
	PaymentStatus   string         `gorm:"index;not null" json:"payment_status"` // pending/paid/failed/refunded
	Date            string         `gorm:"type:varchar(10);index;not null" json:"date"`
	MealType        string         `gorm:"type:varchar(20);index;not null" json:"meal_type"`
	AddressID       uint           `gorm:"index;not null" json:"address_id"`
	AddressText     string         `gorm:"type:text;not null" json:"address_text"`
	AddressLandmark string         `gorm:"type:varchar(200)" json:"address_landmark"`
	Subtotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	DeliveryCharge  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_charge"`
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Notes           string         `gorm:"type:varchar(500)" json:"notes"`
	CanceledAt      *time.Time     `gorm:"index" json:"canceled_at"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName maps the model to its table.
func (Order) TableName() string {
	return "orders"
}
