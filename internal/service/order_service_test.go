package service

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/models"
)

func placeOrderFixture(t *testing.T, env *testEnv) (*models.User, *models.Address, *models.MenuItem) {
	t.Helper()
	user := env.createUser(t, "diner@example.com")
	address := env.createAddress(t, user.ID, true)
	item := env.createMenuItem(t, "Veg Thali", constants.MealTypeLunch, 120, true)
	return user, address, item
}

func TestPlaceOrderComputesTotalsAndReservesCapacity(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	date := testDate(1)

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      date,
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 2}},
		Notes:     "less spicy",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if !strings.HasPrefix(order.OrderNo, constants.OrderNumberPrefix) {
		t.Fatalf("order number want %s prefix, got %s", constants.OrderNumberPrefix, order.OrderNo)
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("new order want pending/pending, got %s/%s", order.Status, order.PaymentStatus)
	}
	if got := order.Subtotal.String(); got != "240.00" {
		t.Fatalf("subtotal want 240.00, got %s", got)
	}
	if got := order.TotalAmount.String(); got != "245.00" {
		t.Fatalf("total with delivery want 245.00, got %s", got)
	}
	if order.AddressText == "" || !strings.Contains(order.AddressText, "Pune") {
		t.Fatalf("address snapshot missing, got %q", order.AddressText)
	}
	if got := env.bookedFor(t, date, constants.MealTypeLunch); got != 1 {
		t.Fatalf("one order should book one slot, got %d", got)
	}
}

func TestPlaceOrderDateWindow(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)

	base := CreateOrderInput{
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	}

	for _, date := range []string{testDate(-1), testDate(constants.OrderAdvanceDays + 1), "not-a-date"} {
		input := base
		input.Date = date
		if _, err := env.orderSvc.PlaceOrder(user.ID, input); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("date %s want ErrInvalidDate, got %v", date, err)
		}
	}

	// Window edges are both valid.
	for _, date := range []string{testDate(0), testDate(constants.OrderAdvanceDays)} {
		input := base
		input.Date = date
		if _, err := env.orderSvc.PlaceOrder(user.ID, input); err != nil {
			t.Fatalf("date %s should be accepted, got %v", date, err)
		}
	}
}

func TestPlaceOrderSameDayCutoff(t *testing.T) {
	env := newTestEnv(t)
	user, address, _ := placeOrderFixture(t, env)
	breakfastItem := env.createMenuItem(t, "Poha", constants.MealTypeBreakfast, 45, true)

	// Clock is 09:00: breakfast cutoff (06:00) passed, lunch (10:00) open.
	_, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      testDate(0),
		MealType:  constants.MealTypeBreakfast,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: breakfastItem.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrOrderWindowClosed) {
		t.Fatalf("same-day breakfast past cutoff want ErrOrderWindowClosed, got %v", err)
	}

	// Tomorrow's breakfast is unaffected by today's cutoff.
	if _, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      testDate(1),
		MealType:  constants.MealTypeBreakfast,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: breakfastItem.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("next-day breakfast should be accepted, got %v", err)
	}
}

func TestPlaceOrderAddressChecks(t *testing.T) {
	env := newTestEnv(t)
	user, _, item := placeOrderFixture(t, env)
	unverified := env.createAddress(t, user.ID, false)
	stranger := env.createUser(t, "other@example.com")
	foreign := env.createAddress(t, stranger.ID, true)

	base := CreateOrderInput{
		Date:     testDate(1),
		MealType: constants.MealTypeLunch,
		Items:    []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	}

	for _, addressID := range []uint{0, unverified.ID, foreign.ID} {
		input := base
		input.AddressID = addressID
		if _, err := env.orderSvc.PlaceOrder(user.ID, input); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("address %d want ErrInvalidAddress, got %v", addressID, err)
		}
	}
}

func TestPlaceOrderItemChecks(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	inactive := env.createMenuItem(t, "Retired Dish", constants.MealTypeLunch, 90, false)

	base := CreateOrderInput{
		Date:      testDate(1),
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
	}

	input := base
	if _, err := env.orderSvc.PlaceOrder(user.ID, input); !errors.Is(err, ErrEmptyOrderItems) {
		t.Fatalf("empty items want ErrEmptyOrderItems, got %v", err)
	}

	input = base
	input.Items = []CreateOrderItem{{MenuItemID: item.ID, Quantity: 0}}
	if _, err := env.orderSvc.PlaceOrder(user.ID, input); !errors.Is(err, ErrEmptyOrderItems) {
		t.Fatalf("zero quantity want ErrEmptyOrderItems, got %v", err)
	}

	input = base
	input.Items = []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}, {MenuItemID: inactive.ID, Quantity: 1}}
	_, err := env.orderSvc.PlaceOrder(user.ID, input)
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("inactive item want ErrItemUnavailable, got %v", err)
	}
	var unavailable *ItemUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error should carry the missing ids, got %T", err)
	}
	if len(unavailable.MissingIDs) != 1 || unavailable.MissingIDs[0] != inactive.ID {
		t.Fatalf("missing ids want [%d], got %v", inactive.ID, unavailable.MissingIDs)
	}
}

func TestPlaceOrderCapacityFullLeavesNothingBehind(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	date := testDate(1)

	if _, err := env.capacitySvc.SetLimit(date, constants.MealTypeLunch, 1); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	input := CreateOrderInput{
		Date:      date,
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	}
	if _, err := env.orderSvc.PlaceOrder(user.ID, input); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := env.orderSvc.PlaceOrder(user.ID, input); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("full date want ErrCapacityExceeded, got %v", err)
	}

	if got := env.orderCount(t); got != 1 {
		t.Fatalf("failed placement must not leave an order row, count %d", got)
	}
	if got := env.bookedFor(t, date, constants.MealTypeLunch); got != 1 {
		t.Fatalf("failed placement must not book a slot, booked %d", got)
	}
}

func TestCancelOrderReleasesSlotAndAppendsReason(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	date := testDate(1)

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      date,
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		Notes:     "ring the bell",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	cancelled, err := env.orderSvc.CancelOrder(user.ID, order.ID, "plans changed")
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled, got %s", cancelled.Status)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("canceled_at should be set")
	}
	if !strings.Contains(cancelled.Notes, "ring the bell") || !strings.Contains(cancelled.Notes, "plans changed") {
		t.Fatalf("notes should keep the original text and append the reason, got %q", cancelled.Notes)
	}
	if got := env.bookedFor(t, date, constants.MealTypeLunch); got != 0 {
		t.Fatalf("cancel should release the slot, booked %d", got)
	}

	// A second cancel is no longer a valid transition.
	if _, err := env.orderSvc.CancelOrder(user.ID, order.ID, "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double cancel want ErrInvalidTransition, got %v", err)
	}
}

func TestCancelOrderSameDayCutoff(t *testing.T) {
	env := newTestEnv(t)
	user, address, _ := placeOrderFixture(t, env)
	item := env.createMenuItem(t, "Poha", constants.MealTypeBreakfast, 45, true)

	// Seed a same-day breakfast order directly; placement would refuse it at
	// 09:00 but cancellation must hit the same gate.
	order := &models.Order{
		OrderNo:       "MS-TEST-0001",
		UserID:        user.ID,
		Status:        constants.OrderStatusConfirmed,
		PaymentStatus: constants.OrderPaymentStatusPaid,
		Date:          testDate(0),
		MealType:      constants.MealTypeBreakfast,
		AddressID:     address.ID,
		AddressText:   "12 Lake View Road, Pune",
	}
	if err := env.orderRepo.Create(order, []models.OrderItem{{
		MenuItemID: item.ID,
		ItemName:   item.Name,
		UnitPrice:  item.Price,
		Quantity:   1,
		TotalPrice: item.Price,
	}}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if _, err := env.orderSvc.CancelOrder(user.ID, order.ID, "too late"); !errors.Is(err, ErrOrderWindowClosed) {
		t.Fatalf("same-day cancel past cutoff want ErrOrderWindowClosed, got %v", err)
	}
}

func TestCancelOrderOwnership(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	stranger := env.createUser(t, "other@example.com")

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      testDate(1),
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if _, err := env.orderSvc.CancelOrder(stranger.ID, order.ID, "not mine"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign cancel want ErrOrderNotFound, got %v", err)
	}
}

func TestCreateBulkOrdersPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	dinnerItem := env.createMenuItem(t, "Dal Khichdi", constants.MealTypeDinner, 100, true)

	groups := []CreateOrderInput{
		{
			Date:      testDate(1),
			MealType:  constants.MealTypeLunch,
			AddressID: address.ID,
			Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		},
		{
			Date:      testDate(2),
			MealType:  constants.MealTypeDinner,
			AddressID: address.ID,
			Items:     []CreateOrderItem{{MenuItemID: dinnerItem.ID, Quantity: 2}},
		},
		{
			// Out of window, fails without touching the other groups.
			Date:      testDate(constants.OrderAdvanceDays + 2),
			MealType:  constants.MealTypeLunch,
			AddressID: address.ID,
			Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		},
	}

	result, err := env.orderSvc.CreateBulkOrders(user.ID, groups)
	if err != nil {
		t.Fatalf("bulk orders: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("orders created want 2, got %d", len(result.Orders))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("group errors want 1, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0].Err, ErrInvalidDate) {
		t.Fatalf("group error want ErrInvalidDate, got %v", result.Errors[0].Err)
	}

	if _, err := env.orderSvc.CreateBulkOrders(user.ID, nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("empty bulk want ErrEmptyCart, got %v", err)
	}
}

func TestCreateBulkOrdersRejectsBadAddressUpFront(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	unverified := env.createAddress(t, user.ID, false)

	groups := []CreateOrderInput{
		{
			Date:      testDate(1),
			MealType:  constants.MealTypeLunch,
			AddressID: address.ID,
			Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		},
		{
			Date:      testDate(2),
			MealType:  constants.MealTypeLunch,
			AddressID: unverified.ID,
			Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		},
	}

	if _, err := env.orderSvc.CreateBulkOrders(user.ID, groups); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("bulk with unverified address want ErrInvalidAddress, got %v", err)
	}
	if got := env.orderCount(t); got != 0 {
		t.Fatalf("up-front address failure must create no orders, count %d", got)
	}
}

func TestAdminUpdateStatusStateMachine(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	date := testDate(1)

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      date,
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// pending cannot jump straight to preparing.
	if _, err := env.orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusPreparing); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending->preparing want ErrInvalidTransition, got %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
	} {
		updated, err := env.orderSvc.AdminUpdateStatus(order.ID, status)
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("status want %s, got %s", status, updated.Status)
		}
	}

	// Delivered is terminal.
	if _, err := env.orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("delivered->cancelled want ErrInvalidTransition, got %v", err)
	}

	if _, err := env.orderSvc.AdminUpdateStatus(9999, constants.OrderStatusConfirmed); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order want ErrOrderNotFound, got %v", err)
	}
}

func TestAdminCancelReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	date := testDate(1)

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      date,
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if _, err := env.orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusCancelled); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if got := env.bookedFor(t, date, constants.MealTypeLunch); got != 0 {
		t.Fatalf("admin cancel should release the slot, booked %d", got)
	}
}

func TestOrderHistoryAndTodayOrders(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)
	dinnerItem := env.createMenuItem(t, "Dal Khichdi", constants.MealTypeDinner, 100, true)

	for _, input := range []CreateOrderInput{
		{Date: testDate(0), MealType: constants.MealTypeDinner, AddressID: address.ID, Items: []CreateOrderItem{{MenuItemID: dinnerItem.ID, Quantity: 1}}},
		{Date: testDate(1), MealType: constants.MealTypeLunch, AddressID: address.ID, Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}}},
		{Date: testDate(2), MealType: constants.MealTypeLunch, AddressID: address.ID, Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}}},
	} {
		if _, err := env.orderSvc.PlaceOrder(user.ID, input); err != nil {
			t.Fatalf("place order %s: %v", input.Date, err)
		}
	}

	orders, total, err := env.orderSvc.History(user.ID, OrderHistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 3 || len(orders) != 3 {
		t.Fatalf("history want 3 orders, got total=%d len=%d", total, len(orders))
	}

	lunchOnly, total, err := env.orderSvc.History(user.ID, OrderHistoryFilter{MealType: constants.MealTypeLunch})
	if err != nil {
		t.Fatalf("filtered history: %v", err)
	}
	if total != 2 || len(lunchOnly) != 2 {
		t.Fatalf("lunch history want 2 orders, got total=%d len=%d", total, len(lunchOnly))
	}

	today, err := env.orderSvc.TodayOrders(user.ID)
	if err != nil {
		t.Fatalf("today orders: %v", err)
	}
	if len(today) != 1 || today[0].Date != testDate(0) {
		t.Fatalf("today orders want the single same-day order, got %d", len(today))
	}
}

func TestOrderStatusWriteIsConditional(t *testing.T) {
	env := newTestEnv(t)
	user, address, item := placeOrderFixture(t, env)

	order, err := env.orderSvc.PlaceOrder(user.ID, CreateOrderInput{
		Date:      testDate(1),
		MealType:  constants.MealTypeLunch,
		AddressID: address.ID,
		Items:     []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// A writer that validated against a status the row no longer holds must
	// lose instead of flipping the row.
	affected, err := env.orderRepo.UpdateStatus(order.ID, []string{constants.OrderStatusConfirmed}, constants.OrderStatusPreparing, nil)
	if err != nil {
		t.Fatalf("conditional update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("stale from-status must not flip the row, affected %d", affected)
	}
	got, err := env.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if got.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending after losing write, got %s", got.Status)
	}

	affected, err = env.orderRepo.UpdateStatus(order.ID, cancellableStatuses, constants.OrderStatusCancelled, nil)
	if err != nil {
		t.Fatalf("cancel update: %v", err)
	}
	if affected != 1 {
		t.Fatalf("matching from-status want 1 row, affected %d", affected)
	}

	// The second cancel finds the row already cancelled, so exactly one
	// caller ever gets to release the capacity slot.
	affected, err = env.orderRepo.UpdateStatus(order.ID, cancellableStatuses, constants.OrderStatusCancelled, nil)
	if err != nil {
		t.Fatalf("repeat cancel update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("repeat cancel must not flip again, affected %d", affected)
	}
}

func TestCancelNotesTruncateOnRuneBoundary(t *testing.T) {
	// Three bytes per rune, so a byte cap lands mid-rune unless the cut
	// backs up to a boundary.
	cut := truncate(strings.Repeat("क", 10), 5)
	if !utf8.ValidString(cut) {
		t.Fatalf("truncate produced invalid utf-8: %q", cut)
	}
	if len(cut) != 3 {
		t.Fatalf("cut want 3 bytes (one full rune), got %d", len(cut))
	}

	notes := appendCancelReason(strings.Repeat("क", constants.OrderNotesMaxLen/3), strings.Repeat("क", 100))
	if !utf8.ValidString(notes) {
		t.Fatalf("cancel notes hold invalid utf-8")
	}
	if len(notes) > constants.OrderNotesMaxLen {
		t.Fatalf("cancel notes over the cap: %d bytes", len(notes))
	}
}
