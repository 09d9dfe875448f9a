package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/repository"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest status transition payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders lists orders across all users with filters.
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		MealType: strings.TrimSpace(c.Query("meal_type")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
		Date:     strings.TrimSpace(c.Query("date")),
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}

	orders, total, err := h.OrderService.AdminListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// UpdateOrderStatus moves an order along the fulfilment pipeline.
// Cancelling through this path releases the order's capacity.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.AdminUpdateStatus(uint(orderID), strings.TrimSpace(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrInvalidTransition):
			respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}
	response.Success(c, order)
}
