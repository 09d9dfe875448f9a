package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem one cart line, unique per user/item/date/meal/address.
// Adding the same combination again bumps the quantity instead.
type CartItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_cart_line" json:"user_id"`
	MenuItemID uint           `gorm:"not null;uniqueIndex:idx_cart_line" json:"menu_item_id"`
	Date       string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_cart_line" json:"date"`
	MealType   string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_line" json:"meal_type"`
	AddressID  uint           `gorm:"not null;default:0;uniqueIndex:idx_cart_line" json:"address_id"` // 0 until an address is chosen
	Quantity   int            `gorm:"not null" json:"quantity"`
	ItemName   string         `gorm:"type:varchar(120);not null" json:"item_name"` // snapshot at add time
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

// TableName maps the model to its table.
func (CartItem) TableName() string {
	return "cart_items"
}
