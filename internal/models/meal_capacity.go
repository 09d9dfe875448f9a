package models

import (
	"time"
)

// Default per-meal capacity applied when a date's record is first created.
const DefaultMealCapacity = 50

// MealCapacity per-date booked/limit counters, one row per delivery date.
// A missing row means the date is not capacity-managed yet.
type MealCapacity struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Date            string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"` // delivery date, YYYY-MM-DD
	BreakfastLimit  int       `gorm:"not null;default:50" json:"breakfast_limit"`
	BreakfastBooked int       `gorm:"not null;default:0" json:"breakfast_booked"`
	LunchLimit      int       `gorm:"not null;default:50" json:"lunch_limit"`
	LunchBooked     int       `gorm:"not null;default:0" json:"lunch_booked"`
	DinnerLimit     int       `gorm:"not null;default:50" json:"dinner_limit"`
	DinnerBooked    int       `gorm:"not null;default:0" json:"dinner_booked"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`
}

// TableName maps the model to its table.
func (MealCapacity) TableName() string {
	return "meal_capacities"
}

// Limit returns the limit column value for a meal type.
func (m *MealCapacity) Limit(mealType string) int {
	switch mealType {
	case "breakfast":
		return m.BreakfastLimit
	case "lunch":
		return m.LunchLimit
	default:
		return m.DinnerLimit
	}
}

// Booked returns the booked column value for a meal type.
func (m *MealCapacity) Booked(mealType string) int {
	switch mealType {
	case "breakfast":
		return m.BreakfastBooked
	case "lunch":
		return m.LunchBooked
	default:
		return m.DinnerBooked
	}
}
