package repository

import "time"

// OrderListFilter filter for order list queries.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	MealType    string
	OrderNo     string
	Date        string
	DateFrom    string
	DateTo      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PaymentListFilter filter for payment list queries.
type PaymentListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}

// MenuListFilter filter for menu item list queries.
type MenuListFilter struct {
	Page       int
	PageSize   int
	MealType   string
	Search     string
	OnlyActive bool
}
