package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by services and mapped to response codes by the
// HTTP layer.
var (
	ErrInvalidDate               = errors.New("order date outside the allowed window")
	ErrOrderWindowClosed         = errors.New("ordering window closed for this meal")
	ErrInvalidMealType           = errors.New("unknown meal type")
	ErrInvalidAddress            = errors.New("address missing, inactive or unverified")
	ErrItemUnavailable           = errors.New("menu item unavailable")
	ErrCapacityExceeded          = errors.New("meal capacity exceeded for this date")
	ErrInvalidCapacity           = errors.New("capacity limit below booked count")
	ErrOrderNotFound             = errors.New("order not found")
	ErrInvalidTransition         = errors.New("order status transition not allowed")
	ErrDuplicateOrderNumber      = errors.New("order number collision")
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrInvalidAmount             = errors.New("payment amount must be positive")
	ErrAmountMismatch            = errors.New("declared amount does not match cart total")
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrPaymentVerificationFailed = errors.New("payment signature verification failed")
	ErrCartItemNotFound          = errors.New("cart item not found")
	ErrMenuItemNotFound          = errors.New("menu item not found")
	ErrAddressNotFound           = errors.New("address not found")
	ErrEmailTaken                = errors.New("email already registered")
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrUserDisabled              = errors.New("account disabled")
	ErrEmptyOrderItems           = errors.New("order has no items")
)

// ItemUnavailableError carries the ids that failed the menu check.
// errors.Is(err, ErrItemUnavailable) matches it.
type ItemUnavailableError struct {
	MissingIDs []uint
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu items unavailable: %v", e.MissingIDs)
}

// Is makes the sentinel match through errors.Is.
func (e *ItemUnavailableError) Is(target error) bool {
	return target == ErrItemUnavailable
}
