package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/models"

	"github.com/shopspring/decimal"
)

func newPaymentEnv(t *testing.T) (*testEnv, *PaymentService, *fakeGateway) {
	t.Helper()
	env := newTestEnv(t)
	gateway := &fakeGateway{validSignature: "good-signature"}
	svc := NewPaymentService(env.paymentRepo, env.orderRepo, env.cartSvc, env.orderSvc, gateway, "INR")
	svc.now = func() time.Time { return testNow }
	return env, svc, gateway
}

func fillCart(t *testing.T, env *testEnv, userID, addressID, itemID uint) {
	t.Helper()
	if _, err := env.cartSvc.AddItem(userID, AddCartItemInput{
		MenuItemID: itemID,
		Date:       testDate(1),
		MealType:   constants.MealTypeLunch,
		AddressID:  addressID,
		Quantity:   2,
	}); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
}

func TestInitiatePaymentSnapshotsWithoutReserving(t *testing.T) {
	env, svc, gateway := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	result, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}
	if result.ProviderOrderID == "" || result.Receipt == "" {
		t.Fatalf("initiation should return gateway handles, got %+v", result)
	}
	// 2 x 120 + 5 delivery.
	if got := result.Amount.String(); got != "245.00" {
		t.Fatalf("amount want 245.00, got %s", got)
	}
	if gateway.createCalls != 1 {
		t.Fatalf("gateway create calls want 1, got %d", gateway.createCalls)
	}

	// Nothing is held until the gateway confirms.
	if got := env.orderCount(t); got != 0 {
		t.Fatalf("initiation must not create orders, count %d", got)
	}
	if got := env.bookedFor(t, testDate(1), constants.MealTypeLunch); got != 0 {
		t.Fatalf("initiation must not book capacity, booked %d", got)
	}

	payment, err := env.paymentRepo.GetByProviderOrderID(result.ProviderOrderID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Status != constants.PaymentStatusCreated {
		t.Fatalf("payment status want created, got %s", payment.Status)
	}
	if payment.CartSnapshot == "" {
		t.Fatalf("payment should hold the cart snapshot")
	}
}

func TestInitiatePaymentValidation(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)

	if _, err := svc.InitiatePayment(context.Background(), user.ID, nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("empty cart want ErrEmptyCart, got %v", err)
	}

	fillCart(t, env, user.ID, address.ID, item.ID)

	wrong := decimal.NewFromInt(100)
	if _, err := svc.InitiatePayment(context.Background(), user.ID, &wrong); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("wrong declared total want ErrAmountMismatch, got %v", err)
	}

	// Within the rounding tolerance passes.
	near := decimal.RequireFromString("245.005")
	if _, err := svc.InitiatePayment(context.Background(), user.ID, &near); err != nil {
		t.Fatalf("declared total within tolerance should pass: %v", err)
	}
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	env, svc, gateway := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	gateway.createErr = errors.New("gateway down")
	if _, err := svc.InitiatePayment(context.Background(), user.ID, nil); err == nil {
		t.Fatalf("gateway failure should surface")
	}

	var count int64
	if err := models.DB.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed initiation must not persist a payment, count %d", count)
	}
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	init, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	_, err = svc.ConfirmPayment(context.Background(), user.ID, ConfirmPaymentInput{
		ProviderOrderID:   init.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "tampered",
	})
	if !errors.Is(err, ErrPaymentVerificationFailed) {
		t.Fatalf("bad signature want ErrPaymentVerificationFailed, got %v", err)
	}

	payment, err := env.paymentRepo.GetByProviderOrderID(init.ProviderOrderID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Status != constants.PaymentStatusFailed {
		t.Fatalf("payment status want failed, got %s", payment.Status)
	}
	if got := env.orderCount(t); got != 0 {
		t.Fatalf("rejected confirmation must not create orders, count %d", got)
	}
}

func TestConfirmPaymentCreatesPaidOrdersAndClearsCart(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	init, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	result, err := svc.ConfirmPayment(context.Background(), user.ID, ConfirmPaymentInput{
		ProviderOrderID:   init.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "good-signature",
	})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if len(result.Orders) != 1 || len(result.Errors) != 0 {
		t.Fatalf("want 1 order and no errors, got %d/%d", len(result.Orders), len(result.Errors))
	}
	order := result.Orders[0]
	if order.Status != constants.OrderStatusConfirmed || order.PaymentStatus != constants.OrderPaymentStatusPaid {
		t.Fatalf("paid order want confirmed/paid, got %s/%s", order.Status, order.PaymentStatus)
	}
	if got := env.bookedFor(t, testDate(1), constants.MealTypeLunch); got != 1 {
		t.Fatalf("confirmed order should book one slot, booked %d", got)
	}
	if result.Payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("payment status want completed, got %s", result.Payment.Status)
	}
	if result.Payment.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}
	if len(result.Payment.OrderIDs) != 1 || result.Payment.OrderIDs[0] != order.ID {
		t.Fatalf("payment should record the created order ids, got %v", result.Payment.OrderIDs)
	}

	lines, err := env.cartRepo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("confirmed groups should be cleared from the cart, got %d lines", len(lines))
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	init, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}
	input := ConfirmPaymentInput{
		ProviderOrderID:   init.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "good-signature",
	}

	first, err := svc.ConfirmPayment(context.Background(), user.ID, input)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := svc.ConfirmPayment(context.Background(), user.ID, input)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	if len(second.Orders) != len(first.Orders) {
		t.Fatalf("replay should return the original orders, got %d vs %d", len(second.Orders), len(first.Orders))
	}
	if second.Orders[0].ID != first.Orders[0].ID {
		t.Fatalf("replay should return the same order, got %d vs %d", second.Orders[0].ID, first.Orders[0].ID)
	}
	if got := env.orderCount(t); got != 1 {
		t.Fatalf("replay must not create more orders, count %d", got)
	}
	if got := env.bookedFor(t, testDate(1), constants.MealTypeLunch); got != 1 {
		t.Fatalf("replay must not book capacity again, booked %d", got)
	}
}

func TestConfirmPaymentOwnershipAndUnknownOrder(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	stranger := env.createUser(t, "other@example.com")
	fillCart(t, env, user.ID, address.ID, item.ID)

	init, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	input := ConfirmPaymentInput{
		ProviderOrderID:   init.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "good-signature",
	}
	if _, err := svc.ConfirmPayment(context.Background(), stranger.ID, input); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("foreign confirm want ErrPaymentNotFound, got %v", err)
	}

	input.ProviderOrderID = "order_unknown"
	if _, err := svc.ConfirmPayment(context.Background(), user.ID, input); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("unknown provider order want ErrPaymentNotFound, got %v", err)
	}
}

func TestConfirmPaymentCapacityLostAfterInitiation(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	init, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	// The date fills up between initiation and confirmation.
	if _, err := env.capacitySvc.SetLimit(testDate(1), constants.MealTypeLunch, 0); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	result, err := svc.ConfirmPayment(context.Background(), user.ID, ConfirmPaymentInput{
		ProviderOrderID:   init.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "good-signature",
	})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if len(result.Orders) != 0 || len(result.Errors) != 1 {
		t.Fatalf("want 0 orders and 1 error, got %d/%d", len(result.Orders), len(result.Errors))
	}
	if !errors.Is(result.Errors[0].Err, ErrCapacityExceeded) {
		t.Fatalf("group error want ErrCapacityExceeded, got %v", result.Errors[0].Err)
	}
	// The payment still completes; refunds are an ops follow-up.
	if result.Payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("payment status want completed, got %s", result.Payment.Status)
	}
}

func TestPaymentHistory(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	if _, err := svc.InitiatePayment(context.Background(), user.ID, nil); err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	payments, total, err := svc.History(user.ID, 1, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 || len(payments) != 1 {
		t.Fatalf("history want 1 payment, got total=%d len=%d", total, len(payments))
	}

	payments, total, err = svc.History(env.createUser(t, "empty@example.com").ID, 1, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 0 || len(payments) != 0 {
		t.Fatalf("other user's history should be empty, got total=%d len=%d", total, len(payments))
	}
}

func TestPaymentStatusWriteIsConditional(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user, address, item := placeOrderFixture(t, env)
	fillCart(t, env, user.ID, address.ID, item.ID)

	result, err := svc.InitiatePayment(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	// A writer expecting a status the row does not hold must lose.
	affected, err := env.paymentRepo.UpdateStatus(result.PaymentID, []string{constants.PaymentStatusCompleted}, constants.PaymentStatusFailed, nil)
	if err != nil {
		t.Fatalf("conditional update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("stale from-status must not flip the row, affected %d", affected)
	}
	payment, err := env.paymentRepo.GetByID(result.PaymentID)
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != constants.PaymentStatusCreated {
		t.Fatalf("status want created after losing write, got %s", payment.Status)
	}

	affected, err = env.paymentRepo.UpdateStatus(result.PaymentID, retryableStatuses, constants.PaymentStatusCompleted, nil)
	if err != nil {
		t.Fatalf("complete update: %v", err)
	}
	if affected != 1 {
		t.Fatalf("matching from-status want 1 row, affected %d", affected)
	}

	// Completed is terminal; a concurrent confirm that lost the flip takes
	// the idempotent path instead of completing twice.
	affected, err = env.paymentRepo.UpdateStatus(result.PaymentID, retryableStatuses, constants.PaymentStatusCompleted, nil)
	if err != nil {
		t.Fatalf("repeat complete update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("repeat complete must not flip again, affected %d", affected)
	}
}
