package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem catalog entry for a bookable dish.
type MenuItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(120);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	MealType    string         `gorm:"type:varchar(20);index;not null" json:"meal_type"` // breakfast/lunch/dinner
	IsSpecial   bool           `gorm:"not null;default:false" json:"is_special"`         // chef special, priced per day
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`
	IsActive    bool           `gorm:"index;not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName maps the model to its table.
func (MenuItem) TableName() string {
	return "menu_items"
}
