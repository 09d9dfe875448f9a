package service

import (
	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/repository"
)

// OrderHistoryFilter customer-facing history filters.
type OrderHistoryFilter struct {
	Status   string
	MealType string
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

// GetOrder fetches an order owned by the user.
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNo fetches an order by number owned by the user.
func (s *OrderService) GetOrderByNo(userID uint, orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// History lists a user's orders newest first. Page size is capped so a
// client cannot pull the whole table in one call.
func (s *OrderService) History(userID uint, filter OrderHistoryFilter) ([]models.Order, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > constants.OrderHistoryMaxPage {
		pageSize = constants.OrderHistoryMaxPage
	}
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   filter.Status,
		MealType: filter.MealType,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	})
}

// OrdersForDate lists a user's orders for one delivery date.
func (s *OrderService) OrdersForDate(userID uint, date string) ([]models.Order, error) {
	orders, _, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID: userID,
		Date:   date,
	})
	return orders, err
}

// TodayOrders lists a user's orders delivering today.
func (s *OrderService) TodayOrders(userID uint) ([]models.Order, error) {
	return s.OrdersForDate(userID, s.now().Format(constants.DateLayout))
}

// AdminListOrders lists all orders matching the filter.
func (s *OrderService) AdminListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// AdminUpdateStatus moves an order along the status state machine. A
// transition into cancelled releases the capacity slot like a customer
// cancellation would.
func (s *OrderService) AdminUpdateStatus(orderID uint, newStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{}
	if newStatus == constants.OrderStatusCancelled {
		updates["canceled_at"] = s.now()
	}
	// Conditional on the status we validated from; a concurrent transition
	// in between makes this a no-op instead of a double write.
	affected, err := s.orderRepo.UpdateStatus(order.ID, []string{order.Status}, newStatus, updates)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidTransition
	}
	if newStatus == constants.OrderStatusCancelled {
		if releaseErr := s.capacitySvc.Release(order.Date, order.MealType, 1); releaseErr != nil {
			logger.Errorw("order_cancel_capacity_release_failed",
				"order_id", order.ID,
				"date", order.Date,
				"meal_type", order.MealType,
				"error", releaseErr,
			)
		}
	}
	order.Status = newStatus
	s.notifyOrderStatus(order.ID, newStatus)
	return order, nil
}
