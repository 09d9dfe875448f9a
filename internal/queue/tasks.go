package queue

import (
	"encoding/json"

	"github.com/mealstack/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderNotification order status notification task
	TaskOrderNotification = constants.TaskOrderNotification
	// TaskCartCleanup expired cart line sweep task
	TaskCartCleanup = constants.TaskCartCleanup
)

// OrderNotificationPayload order status notification payload.
type OrderNotificationPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// CartCleanupPayload expired cart sweep payload.
type CartCleanupPayload struct {
	Before string `json:"before"` // delete lines dated before this day
}

// NewOrderNotificationTask builds an order notification task.
func NewOrderNotificationTask(payload OrderNotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotification, body), nil
}

// NewCartCleanupTask builds a cart cleanup task.
func NewCartCleanupTask(payload CartCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartCleanup, body), nil
}
