package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/payment/razorpay"
	"github.com/mealstack/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// amountTolerance how far a client-declared total may drift from the
// computed cart total before the initiation is refused.
var amountTolerance = decimal.NewFromFloat(0.01)

// retryableStatuses the payment statuses a confirm attempt may flip from.
// A failed attempt can be retried with a fresh signature; a completed one
// cannot change again.
var retryableStatuses = []string{
	constants.PaymentStatusCreated,
	constants.PaymentStatusFailed,
}

// PaymentGateway the slice of the gateway client payments need. The
// concrete client is built in the provider and injected here.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PaymentService payment-gated checkout. Initiation snapshots the cart and
// registers a gateway order; nothing is reserved until the gateway confirms.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	cartSvc     *CartService
	orderSvc    *OrderService
	gateway     PaymentGateway
	currency    string
	now         func() time.Time
}

// NewPaymentService creates the payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	cartSvc *CartService,
	orderSvc *OrderService,
	gateway PaymentGateway,
	currency string,
) *PaymentService {
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		cartSvc:     cartSvc,
		orderSvc:    orderSvc,
		gateway:     gateway,
		currency:    currency,
		now:         time.Now,
	}
}

// PaymentInitResult what the client needs to open the gateway checkout.
type PaymentInitResult struct {
	PaymentID       uint         `json:"payment_id"`
	ProviderOrderID string       `json:"provider_order_id"`
	Amount          models.Money `json:"amount"`
	Currency        string       `json:"currency"`
	Receipt         string       `json:"receipt"`
}

// ConfirmPaymentInput the gateway checkout callback fields.
type ConfirmPaymentInput struct {
	ProviderOrderID   string `json:"provider_order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Signature         string `json:"signature"`
}

// PaymentConfirmResult orders created by a confirmed payment plus any
// groups that could no longer be fulfilled.
type PaymentConfirmResult struct {
	Payment *models.Payment  `json:"payment"`
	Orders  []models.Order   `json:"orders"`
	Errors  []BulkGroupError `json:"errors,omitempty"`
}

// InitiatePayment snapshots the cart, registers a remote gateway order and
// persists the attempt. Orders and capacity stay untouched; a customer who
// never completes checkout holds nothing.
func (s *PaymentService) InitiatePayment(ctx context.Context, userID uint, declaredTotal *decimal.Decimal) (*PaymentInitResult, error) {
	view, err := s.cartSvc.View(userID)
	if err != nil {
		return nil, err
	}
	if len(view.Groups) == 0 {
		return nil, ErrEmptyCart
	}
	total := view.Total.Decimal
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if declaredTotal != nil && total.Sub(*declaredTotal).Abs().GreaterThan(amountTolerance) {
		return nil, ErrAmountMismatch
	}

	inputs := make([]CreateOrderInput, 0, len(view.Groups))
	for _, group := range view.Groups {
		inputs = append(inputs, cartGroupToOrderInput(group))
	}
	snapshot, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	receipt := uuid.NewString()
	remote, err := s.gateway.CreateOrder(ctx, total, s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}

	payment := &models.Payment{
		UserID:          userID,
		ProviderOrderID: remote.ID,
		Receipt:         receipt,
		Amount:          models.NewMoneyFromDecimal(total),
		Currency:        s.currency,
		Status:          constants.PaymentStatusCreated,
		CartSnapshot:    string(snapshot),
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	logger.Infow("payment_initiated",
		"payment_id", payment.ID,
		"user_id", userID,
		"provider_order_id", remote.ID,
		"amount", payment.Amount.String(),
	)
	return &PaymentInitResult{
		PaymentID:       payment.ID,
		ProviderOrderID: remote.ID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Receipt:         receipt,
	}, nil
}

// ConfirmPayment verifies the gateway signature and replays the snapshot
// through the shared order-creation path as confirmed, paid orders.
// Confirming an already-completed payment returns the original result
// without touching capacity again.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID uint, input ConfirmPaymentInput) (*PaymentConfirmResult, error) {
	payment, err := s.paymentRepo.GetByProviderOrderID(input.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}

	if payment.Status == constants.PaymentStatusCompleted {
		logger.Infow("payment_confirm_idempotent",
			"payment_id", payment.ID,
			"provider_order_id", payment.ProviderOrderID,
		)
		orders, err := s.orderRepo.ListByIDs(payment.OrderIDs)
		if err != nil {
			return nil, err
		}
		return &PaymentConfirmResult{Payment: payment, Orders: orders}, nil
	}

	if !s.gateway.VerifySignature(input.ProviderOrderID, input.ProviderPaymentID, input.Signature) {
		// Conditional so a concurrent confirm that already completed the
		// payment is not flipped back to failed.
		_, updateErr := s.paymentRepo.UpdateStatus(payment.ID, retryableStatuses, constants.PaymentStatusFailed, map[string]interface{}{
			"provider_payment_id": input.ProviderPaymentID,
			"fail_reason":         "signature verification failed",
		})
		if updateErr != nil {
			logger.Errorw("payment_mark_failed_error",
				"payment_id", payment.ID,
				"error", updateErr,
			)
		}
		logger.Warnw("payment_signature_rejected",
			"payment_id", payment.ID,
			"provider_order_id", input.ProviderOrderID,
			"provider_payment_id", input.ProviderPaymentID,
		)
		return nil, ErrPaymentVerificationFailed
	}

	var groups []CreateOrderInput
	if err := json.Unmarshal([]byte(payment.CartSnapshot), &groups); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}

	// Claim the payment before replaying the snapshot; of two racing
	// confirms only the one that flips the row creates orders, the other
	// takes the idempotent path.
	claimed, err := s.paymentRepo.UpdateStatus(payment.ID, retryableStatuses, constants.PaymentStatusCompleted, map[string]interface{}{
		"provider_payment_id": input.ProviderPaymentID,
	})
	if err != nil {
		return nil, err
	}
	if claimed == 0 {
		fresh, err := s.paymentRepo.GetByID(payment.ID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			return nil, ErrPaymentNotFound
		}
		orders, err := s.orderRepo.ListByIDs(fresh.OrderIDs)
		if err != nil {
			return nil, err
		}
		logger.Infow("payment_confirm_idempotent",
			"payment_id", fresh.ID,
			"provider_order_id", fresh.ProviderOrderID,
		)
		return &PaymentConfirmResult{Payment: fresh, Orders: orders}, nil
	}

	result := &PaymentConfirmResult{Payment: payment}
	orderIDs := make(models.UintArray, 0, len(groups))
	for _, group := range groups {
		order, err := s.orderSvc.createOrder(userID, group, constants.OrderStatusConfirmed, constants.OrderPaymentStatusPaid)
		if err != nil {
			result.Errors = append(result.Errors, BulkGroupError{
				Date:      group.Date,
				MealType:  group.MealType,
				AddressID: group.AddressID,
				Reason:    err.Error(),
				Err:       err,
			})
			logger.Warnw("payment_group_order_failed",
				"payment_id", payment.ID,
				"date", group.Date,
				"meal_type", group.MealType,
				"error", err,
			)
			continue
		}
		result.Orders = append(result.Orders, *order)
		orderIDs = append(orderIDs, order.ID)
	}

	now := s.now()
	payment.Status = constants.PaymentStatusCompleted
	payment.ProviderPaymentID = input.ProviderPaymentID
	payment.OrderIDs = orderIDs
	payment.PaidAt = &now
	payment.ProviderPayload = models.JSON{
		"signature": input.Signature,
	}
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	// Drop the live cart lines the confirmed orders came from.
	for _, order := range result.Orders {
		if err := s.cartSvc.cartRepo.DeleteGroup(userID, order.Date, order.MealType, order.AddressID); err != nil {
			logger.Warnw("payment_cart_clear_failed",
				"payment_id", payment.ID,
				"date", order.Date,
				"error", err,
			)
		}
	}

	logger.Infow("payment_completed",
		"payment_id", payment.ID,
		"provider_order_id", payment.ProviderOrderID,
		"orders_created", len(result.Orders),
		"groups_failed", len(result.Errors),
	)
	return result, nil
}

// History lists a user's payment attempts.
func (s *PaymentService) History(userID uint, page, pageSize int) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListByUser(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}
