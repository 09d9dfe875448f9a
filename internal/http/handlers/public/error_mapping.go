package public

import (
	"errors"

	handlershared "github.com/mealstack/internal/http/handlers/shared"
	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// mappedHandlerError maps a service error onto an API error response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidDate, code: response.CodeBadRequest, msg: "delivery date out of range"},
	{target: service.ErrOrderWindowClosed, code: response.CodeBadRequest, msg: "ordering window closed for this meal"},
	{target: service.ErrInvalidMealType, code: response.CodeBadRequest, msg: "invalid meal type"},
	{target: service.ErrInvalidAddress, code: response.CodeBadRequest, msg: "address not usable for delivery"},
	{target: service.ErrEmptyOrderItems, code: response.CodeBadRequest, msg: "order items invalid"},
	{target: service.ErrItemUnavailable, code: response.CodeBadRequest, msg: "one or more items are unavailable"},
	{target: service.ErrCapacityExceeded, code: response.CodeBadRequest, msg: "meal capacity exhausted for this date"},
}

var orderCancelErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, msg: "order can no longer be cancelled"},
	{target: service.ErrOrderWindowClosed, code: response.CodeBadRequest, msg: "cancellation window closed for this meal"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidDate, code: response.CodeBadRequest, msg: "delivery date out of range"},
	{target: service.ErrInvalidMealType, code: response.CodeBadRequest, msg: "invalid meal type"},
	{target: service.ErrItemUnavailable, code: response.CodeBadRequest, msg: "one or more items are unavailable"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
}

var checkoutErrorRules = append([]mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
}, orderCreateErrorRules...)

var paymentInitErrorRules = []mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrAmountMismatch, code: response.CodeBadRequest, msg: "payment amount does not match cart total"},
}

var paymentConfirmErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentVerificationFailed, code: response.CodeBadRequest, msg: "payment signature verification failed"},
}

var addressErrorRules = []mappedHandlerError{
	{target: service.ErrAddressNotFound, code: response.CodeNotFound, msg: "address not found"},
	{target: service.ErrInvalidAddress, code: response.CodeBadRequest, msg: "address line is required"},
}
