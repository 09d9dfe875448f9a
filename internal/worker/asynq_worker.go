package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/provider"
	"github.com/mealstack/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued background tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers on the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderNotification, c.handleOrderNotification)
	mux.HandleFunc(queue.TaskCartCleanup, c.handleCartCleanup)
}

func (c *Consumer) handleOrderNotification(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_notification_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_notification_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_notification_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_notification_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	var receiverEmail string
	if order.UserID != 0 {
		user, err := c.UserRepo.GetByID(order.UserID)
		if err != nil {
			logger.Warnw("worker_order_notification_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
			return err
		}
		if user != nil {
			receiverEmail = strings.TrimSpace(user.Email)
		}
	}
	if receiverEmail == "" {
		logger.Debugw("worker_order_notification_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	// Delivery channels (email, push) hook in here. For now the
	// notification is a structured log line with the order context.
	logger.Infow("order_notification",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"receiver_email", receiverEmail,
		"status", status,
		"date", order.Date,
		"meal_type", order.MealType,
		"total_amount", order.TotalAmount.String(),
	)
	return nil
}

func (c *Consumer) handleCartCleanup(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_cleanup_unmarshal_failed", "error", err)
		return err
	}
	before := strings.TrimSpace(payload.Before)
	if before == "" {
		before = time.Now().Format(constants.DateLayout)
	}
	if _, err := time.Parse(constants.DateLayout, before); err != nil {
		logger.Warnw("worker_cart_cleanup_skip_invalid_date", "before", payload.Before)
		return nil
	}
	if c.CartService == nil {
		logger.Warnw("worker_cart_cleanup_skip_cart_service_nil", "before", before)
		return nil
	}
	removed, err := c.CartService.CleanupExpired(before)
	if err != nil {
		logger.Warnw("worker_cart_cleanup_failed", "before", before, "error", err)
		return err
	}
	if removed > 0 {
		logger.Infow("worker_cart_cleanup_done", "before", before, "removed", removed)
	}
	return nil
}
