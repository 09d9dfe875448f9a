package service

import "github.com/mealstack/internal/constants"

// allowedTransitions order status state machine. Cancellation is only
// reachable from pending/confirmed; delivery states move strictly forward.
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusOutForDelivery: true,
	},
	constants.OrderStatusOutForDelivery: {
		constants.OrderStatusDelivered: true,
	},
}

func isTransitionAllowed(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// cancellableStatuses the statuses a customer cancellation may flip from.
var cancellableStatuses = []string{
	constants.OrderStatusPending,
	constants.OrderStatusConfirmed,
}

func isCancellable(status string) bool {
	return status == constants.OrderStatusPending || status == constants.OrderStatusConfirmed
}
