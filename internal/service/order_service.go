package service

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/queue"
	"github.com/mealstack/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService order lifecycle: placement, bulk checkout, cancellation.
// Every creation path (single, bulk, payment confirm) funnels through
// createOrder so capacity accounting behaves identically everywhere.
type OrderService struct {
	orderRepo      repository.OrderRepository
	capacityRepo   repository.CapacityRepository
	addressRepo    repository.AddressRepository
	menuRepo       repository.MenuItemRepository
	cartRepo       repository.CartRepository
	capacitySvc    *CapacityService
	queueClient    *queue.Client
	deliveryCharge decimal.Decimal
	now            func() time.Time
}

// NewOrderService creates the order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	capacityRepo repository.CapacityRepository,
	addressRepo repository.AddressRepository,
	menuRepo repository.MenuItemRepository,
	cartRepo repository.CartRepository,
	capacitySvc *CapacityService,
	queueClient *queue.Client,
	deliveryCharge decimal.Decimal,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		capacityRepo:   capacityRepo,
		addressRepo:    addressRepo,
		menuRepo:       menuRepo,
		cartRepo:       cartRepo,
		capacitySvc:    capacitySvc,
		queueClient:    queueClient,
		deliveryCharge: deliveryCharge,
		now:            time.Now,
	}
}

// CreateOrderItem one item line in a placement request.
type CreateOrderItem struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// CreateOrderInput one order (one date, meal type and address).
type CreateOrderInput struct {
	Date      string            `json:"date"`
	MealType  string            `json:"meal_type"`
	AddressID uint              `json:"address_id"`
	Items     []CreateOrderItem `json:"items"`
	Notes     string            `json:"notes"`
}

// BulkGroupError one delivery group's failure inside a bulk placement.
type BulkGroupError struct {
	Date      string `json:"date"`
	MealType  string `json:"meal_type"`
	AddressID uint   `json:"address_id"`
	Reason    string `json:"reason"`

	Err error `json:"-"`
}

// BulkOrderResult created orders plus per-group failures.
type BulkOrderResult struct {
	Orders []models.Order   `json:"orders"`
	Errors []BulkGroupError `json:"errors"`
}

// PlaceOrder places a single customer order in pending/pending state.
func (s *OrderService) PlaceOrder(userID uint, input CreateOrderInput) (*models.Order, error) {
	return s.createOrder(userID, input, constants.OrderStatusPending, constants.OrderPaymentStatusPending)
}

// validateOrderDate enforces today <= date <= today+OrderAdvanceDays.
func (s *OrderService) validateOrderDate(date string) (time.Time, error) {
	parsed, err := time.Parse(constants.DateLayout, date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, now.Location())
	if target.Before(today) {
		return time.Time{}, ErrInvalidDate
	}
	if target.After(today.AddDate(0, 0, constants.OrderAdvanceDays)) {
		return time.Time{}, ErrInvalidDate
	}
	return target, nil
}

// checkOrderWindow rejects same-day orders past the meal's cutoff hour.
func (s *OrderService) checkOrderWindow(date, mealType string) error {
	cutoff, ok := constants.MealCutoffHours[mealType]
	if !ok {
		return ErrInvalidMealType
	}
	now := s.now()
	if date != now.Format(constants.DateLayout) {
		return nil
	}
	if now.Hour() >= cutoff {
		return ErrOrderWindowClosed
	}
	return nil
}

// resolveAddress loads an owned, active, verified address.
func (s *OrderService) resolveAddress(userID, addressID uint) (*models.Address, error) {
	if addressID == 0 {
		return nil, ErrInvalidAddress
	}
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil || !address.IsActive || !address.IsVerified {
		return nil, ErrInvalidAddress
	}
	return address, nil
}

// resolveMenuItems loads the requested items, failing with the full list of
// missing or inactive ids.
func (s *OrderService) resolveMenuItems(items []CreateOrderItem) (map[uint]models.MenuItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrderItems
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrEmptyOrderItems
		}
		ids = append(ids, item.MenuItemID)
	}
	found, err := s.menuRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.MenuItem, len(found))
	for _, item := range found {
		if item.IsActive {
			byID[item.ID] = item
		}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &ItemUnavailableError{MissingIDs: missing}
	}
	return byID, nil
}

// createOrder is the shared creation routine. It validates the window,
// address, items and capacity, then inserts the order and reserves the
// capacity slot inside one transaction; either both happen or neither does.
// Each order consumes exactly one slot regardless of item quantities.
func (s *OrderService) createOrder(userID uint, input CreateOrderInput, status, paymentStatus string) (*models.Order, error) {
	if _, err := s.validateOrderDate(input.Date); err != nil {
		return nil, err
	}
	if err := s.checkOrderWindow(input.Date, input.MealType); err != nil {
		return nil, err
	}
	address, err := s.resolveAddress(userID, input.AddressID)
	if err != nil {
		return nil, err
	}
	menuItems, err := s.resolveMenuItems(input.Items)
	if err != nil {
		return nil, err
	}

	// Fast-fail before paying the transaction cost; the reserve inside the
	// transaction is what actually guarantees the limit.
	if _, err := s.capacityRepo.GetOrCreate(input.Date); err != nil {
		return nil, err
	}
	available, err := s.capacitySvc.HasAvailability(input.Date, input.MealType, 1)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrCapacityExceeded
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		menuItem := menuItems[line.MenuItemID]
		lineTotal := menuItem.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menuItem.ID,
			ItemName:   menuItem.Name,
			IsSpecial:  menuItem.IsSpecial,
			UnitPrice:  menuItem.Price,
			Quantity:   line.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
		})
	}

	order := &models.Order{
		OrderNo:         s.generateOrderNo(),
		UserID:          userID,
		Status:          status,
		PaymentStatus:   paymentStatus,
		Date:            input.Date,
		MealType:        input.MealType,
		AddressID:       address.ID,
		AddressText:     address.FullText(),
		AddressLandmark: address.Landmark,
		Subtotal:        models.NewMoneyFromDecimal(subtotal),
		DeliveryCharge:  models.NewMoneyFromDecimal(s.deliveryCharge),
		TotalAmount:     models.NewMoneyFromDecimal(subtotal.Add(s.deliveryCharge)),
		Notes:           truncate(strings.TrimSpace(input.Notes), constants.OrderNotesMaxLen),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		capacityRepo := s.capacityRepo.WithTx(tx)

		if err := orderRepo.Create(order, orderItems); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateOrderNumber
			}
			return err
		}
		affected, err := capacityRepo.Reserve(input.Date, input.MealType, 1)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCapacityExceeded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.capacitySvc.invalidateView(input.Date)
	order.Items = orderItems
	s.notifyOrderStatus(order.ID, order.Status)

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"user_id", userID,
		"date", order.Date,
		"meal_type", order.MealType,
		"status", order.Status,
	)
	return order, nil
}

// CreateBulkOrders places one order per delivery group. All addresses are
// validated up front; after that a failing group only records an error and
// the remaining groups continue.
func (s *OrderService) CreateBulkOrders(userID uint, groups []CreateOrderInput) (*BulkOrderResult, error) {
	if len(groups) == 0 {
		return nil, ErrEmptyCart
	}

	addressIDs := make([]uint, 0, len(groups))
	seen := make(map[uint]bool)
	for _, group := range groups {
		if group.AddressID == 0 {
			return nil, ErrInvalidAddress
		}
		if !seen[group.AddressID] {
			seen[group.AddressID] = true
			addressIDs = append(addressIDs, group.AddressID)
		}
	}
	addresses, err := s.addressRepo.ListByIDsAndUser(addressIDs, userID)
	if err != nil {
		return nil, err
	}
	valid := make(map[uint]bool, len(addresses))
	for _, address := range addresses {
		if address.IsActive && address.IsVerified {
			valid[address.ID] = true
		}
	}
	for _, id := range addressIDs {
		if !valid[id] {
			return nil, ErrInvalidAddress
		}
	}

	result := &BulkOrderResult{}
	for _, group := range groups {
		order, err := s.createOrder(userID, group, constants.OrderStatusPending, constants.OrderPaymentStatusPending)
		if err != nil {
			result.Errors = append(result.Errors, BulkGroupError{
				Date:      group.Date,
				MealType:  group.MealType,
				AddressID: group.AddressID,
				Reason:    err.Error(),
				Err:       err,
			})
			continue
		}
		result.Orders = append(result.Orders, *order)
	}
	return result, nil
}

// CancelOrder cancels a pending or confirmed order. The same-day cutoff is a
// hard gate; past it the kitchen already owns the order. The capacity slot is
// released only after the cancellation committed, and a release failure is
// logged rather than surfaced since the cancellation itself stands.
func (s *OrderService) CancelOrder(userID, orderID uint, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isCancellable(order.Status) {
		return nil, ErrInvalidTransition
	}
	if err := s.checkOrderWindow(order.Date, order.MealType); err != nil {
		return nil, err
	}

	now := s.now()
	notes := appendCancelReason(order.Notes, reason)
	// The write is conditional on the status still being cancellable, so
	// of two racing cancellations only one flips the row and releases.
	affected, err := s.orderRepo.UpdateStatus(order.ID, cancellableStatuses, constants.OrderStatusCancelled, map[string]interface{}{
		"canceled_at": now,
		"notes":       notes,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidTransition
	}

	if releaseErr := s.capacitySvc.Release(order.Date, order.MealType, 1); releaseErr != nil {
		logger.Errorw("order_cancel_capacity_release_failed",
			"order_id", order.ID,
			"date", order.Date,
			"meal_type", order.MealType,
			"error", releaseErr,
		)
	}

	order.Status = constants.OrderStatusCancelled
	order.Notes = notes
	order.CanceledAt = &now
	s.notifyOrderStatus(order.ID, order.Status)

	logger.Infow("order_cancelled",
		"order_no", order.OrderNo,
		"user_id", userID,
		"date", order.Date,
		"meal_type", order.MealType,
	)
	return order, nil
}

func appendCancelReason(notes, reason string) string {
	reason = truncate(strings.TrimSpace(reason), constants.CancelReasonMaxLen)
	if reason == "" {
		reason = "no reason given"
	}
	combined := notes
	if combined != "" {
		combined += "\n"
	}
	combined += "--- CANCELLED ---\nReason: " + reason
	return truncate(combined, constants.OrderNotesMaxLen)
}

// truncate caps s at max bytes, backing up to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// generateOrderNo builds MS + timestamp + 6 random digits.
func (s *OrderService) generateOrderNo() string {
	return fmt.Sprintf("%s%s%s",
		constants.OrderNumberPrefix,
		s.now().Format("20060102150405"),
		randNumeric(6),
	)
}

func randNumeric(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	digits := make([]byte, n)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (s *OrderService) notifyOrderStatus(orderID uint, status string) {
	if err := s.queueClient.EnqueueOrderNotification(queue.OrderNotificationPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_notification_enqueue_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}
