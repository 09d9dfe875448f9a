package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem one menu item line inside an order, with name and price
// snapshotted at placement.
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OrderID    uint           `gorm:"index;not null" json:"order_id"`
	MenuItemID uint           `gorm:"index;not null" json:"menu_item_id"`
	ItemName   string         `gorm:"type:varchar(120);not null" json:"item_name"`
	IsSpecial  bool           `gorm:"not null;default:false" json:"is_special"`
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName maps the model to its table.
func (OrderItem) TableName() string {
	return "order_items"
}
