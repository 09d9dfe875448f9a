package public

import (
	"strconv"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest payment initiation payload. The amount, when
// sent, must match the server-side cart total.
type InitiatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// ConfirmPaymentRequest gateway checkout callback payload.
type ConfirmPaymentRequest struct {
	ProviderOrderID   string `json:"provider_order_id" binding:"required"`
	ProviderPaymentID string `json:"provider_payment_id" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

// InitiatePayment snapshots the cart and opens a gateway order.
func (h *Handler) InitiatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.PaymentService.InitiatePayment(c.Request.Context(), uid, req.Amount)
	if err != nil {
		respondWithMappedError(c, err, paymentInitErrorRules, response.CodeInternal, "payment initiation failed")
		return
	}
	response.Success(c, result)
}

// ConfirmPayment verifies the gateway signature and creates the orders.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.PaymentService.ConfirmPayment(c.Request.Context(), uid, service.ConfirmPaymentInput{
		ProviderOrderID:   req.ProviderOrderID,
		ProviderPaymentID: req.ProviderPaymentID,
		Signature:         req.Signature,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentConfirmErrorRules, response.CodeInternal, "payment confirmation failed")
		return
	}
	response.Success(c, result)
}

// ListPayments returns the user's payment attempts.
func (h *Handler) ListPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	payments, total, err := h.PaymentService.History(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, payments, pagination)
}
