package service

import (
	"sort"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService cart lines and the cart-to-order checkout.
type CartService struct {
	cartRepo       repository.CartRepository
	menuRepo       repository.MenuItemRepository
	orderSvc       *OrderService
	deliveryCharge decimal.Decimal
}

// NewCartService creates the cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	menuRepo repository.MenuItemRepository,
	orderSvc *OrderService,
	deliveryCharge decimal.Decimal,
) *CartService {
	return &CartService{
		cartRepo:       cartRepo,
		menuRepo:       menuRepo,
		orderSvc:       orderSvc,
		deliveryCharge: deliveryCharge,
	}
}

// AddCartItemInput add-to-cart request.
type AddCartItemInput struct {
	MenuItemID uint   `json:"menu_item_id"`
	Date       string `json:"date"`
	MealType   string `json:"meal_type"`
	AddressID  uint   `json:"address_id"`
	Quantity   int    `json:"quantity"`
}

// CartGroup one delivery group: same date, meal type and address.
type CartGroup struct {
	Date           string            `json:"date"`
	MealType       string            `json:"meal_type"`
	AddressID      uint              `json:"address_id"`
	Items          []models.CartItem `json:"items"`
	Subtotal       models.Money      `json:"subtotal"`
	DeliveryCharge models.Money      `json:"delivery_charge"`
	Total          models.Money      `json:"total"`
}

// CartView the grouped cart with totals.
type CartView struct {
	Groups    []CartGroup  `json:"groups"`
	ItemCount int          `json:"item_count"`
	Total     models.Money `json:"total"`
}

// AddItem validates and upserts a cart line, snapshotting name and price.
func (s *CartService) AddItem(userID uint, input AddCartItemInput) (*models.CartItem, error) {
	if _, err := s.orderSvc.validateOrderDate(input.Date); err != nil {
		return nil, err
	}
	if !validMealType(input.MealType) {
		return nil, ErrInvalidMealType
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	menuItem, err := s.menuRepo.GetByID(input.MenuItemID)
	if err != nil {
		return nil, err
	}
	if menuItem == nil || !menuItem.IsActive {
		return nil, &ItemUnavailableError{MissingIDs: []uint{input.MenuItemID}}
	}

	line := &models.CartItem{
		UserID:     userID,
		MenuItemID: menuItem.ID,
		Date:       input.Date,
		MealType:   input.MealType,
		AddressID:  input.AddressID,
		Quantity:   input.Quantity,
		ItemName:   menuItem.Name,
		UnitPrice:  menuItem.Price,
	}
	if err := s.cartRepo.Upsert(line); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(userID, itemID uint, quantity int) error {
	line, err := s.cartRepo.GetByIDAndUser(itemID, userID)
	if err != nil {
		return err
	}
	if line == nil {
		return ErrCartItemNotFound
	}
	if quantity <= 0 {
		return s.cartRepo.Delete(line.ID)
	}
	return s.cartRepo.UpdateQuantity(line.ID, quantity)
}

// RemoveItem removes one line.
func (s *CartService) RemoveItem(userID, itemID uint) error {
	line, err := s.cartRepo.GetByIDAndUser(itemID, userID)
	if err != nil {
		return err
	}
	if line == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.Delete(line.ID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}

// ClearByDate drops a user's lines for one delivery date.
func (s *CartService) ClearByDate(userID uint, date string) error {
	return s.cartRepo.ClearByUserAndDate(userID, date)
}

// View returns the cart grouped by delivery group with totals.
func (s *CartService) View(userID uint) (*CartView, error) {
	lines, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	groups := groupCartLines(lines)

	view := &CartView{Groups: make([]CartGroup, 0, len(groups))}
	total := decimal.Zero
	for _, group := range groups {
		subtotal := decimal.Zero
		for _, line := range group.Items {
			subtotal = subtotal.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
			view.ItemCount += line.Quantity
		}
		groupTotal := subtotal.Add(s.deliveryCharge)
		group.Subtotal = models.NewMoneyFromDecimal(subtotal)
		group.DeliveryCharge = models.NewMoneyFromDecimal(s.deliveryCharge)
		group.Total = models.NewMoneyFromDecimal(groupTotal)
		total = total.Add(groupTotal)
		view.Groups = append(view.Groups, group)
	}
	view.Total = models.NewMoneyFromDecimal(total)
	return view, nil
}

// Checkout converts the whole cart into orders, one per delivery group.
// Created groups are cleared from the cart; failed groups keep their lines
// so the customer can fix and retry.
func (s *CartService) Checkout(userID uint) (*BulkOrderResult, error) {
	lines, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	groups := groupCartLines(lines)
	inputs := make([]CreateOrderInput, 0, len(groups))
	for _, group := range groups {
		inputs = append(inputs, cartGroupToOrderInput(group))
	}

	result, err := s.orderSvc.CreateBulkOrders(userID, inputs)
	if err != nil {
		return nil, err
	}
	for _, order := range result.Orders {
		if err := s.cartRepo.DeleteGroup(userID, order.Date, order.MealType, order.AddressID); err != nil {
			logger.Warnw("cart_group_clear_failed",
				"user_id", userID,
				"date", order.Date,
				"meal_type", order.MealType,
				"error", err,
			)
		}
	}
	return result, nil
}

// CleanupExpired sweeps lines whose delivery date already passed.
func (s *CartService) CleanupExpired(today string) (int64, error) {
	return s.cartRepo.DeleteExpired(today)
}

func cartGroupToOrderInput(group CartGroup) CreateOrderInput {
	items := make([]CreateOrderItem, 0, len(group.Items))
	for _, line := range group.Items {
		items = append(items, CreateOrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}
	return CreateOrderInput{
		Date:      group.Date,
		MealType:  group.MealType,
		AddressID: group.AddressID,
		Items:     items,
	}
}

type cartGroupKey struct {
	Date      string
	MealType  string
	AddressID uint
}

// groupCartLines buckets lines into delivery groups with a stable order:
// by date, then the meal sequence of the day, then address.
func groupCartLines(lines []models.CartItem) []CartGroup {
	byKey := make(map[cartGroupKey]*CartGroup)
	keys := make([]cartGroupKey, 0)
	for _, line := range lines {
		key := cartGroupKey{Date: line.Date, MealType: line.MealType, AddressID: line.AddressID}
		group, ok := byKey[key]
		if !ok {
			group = &CartGroup{Date: line.Date, MealType: line.MealType, AddressID: line.AddressID}
			byKey[key] = group
			keys = append(keys, key)
		}
		group.Items = append(group.Items, line)
	}

	mealOrder := map[string]int{
		constants.MealTypeBreakfast: 0,
		constants.MealTypeLunch:     1,
		constants.MealTypeDinner:    2,
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		if keys[i].MealType != keys[j].MealType {
			return mealOrder[keys[i].MealType] < mealOrder[keys[j].MealType]
		}
		return keys[i].AddressID < keys[j].AddressID
	})

	groups := make([]CartGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *byKey[key])
	}
	return groups
}
