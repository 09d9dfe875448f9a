package public

import (
	"strconv"
	"strings"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest one item line in a placement request.
type OrderItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest single delivery group placement.
type CreateOrderRequest struct {
	Date      string             `json:"date" binding:"required"`
	MealType  string             `json:"meal_type" binding:"required"`
	AddressID uint               `json:"address_id" binding:"required"`
	Items     []OrderItemRequest `json:"items" binding:"required"`
	Notes     string             `json:"notes"`
}

// BulkCreateOrderRequest multi-group placement.
type BulkCreateOrderRequest struct {
	Groups []CreateOrderRequest `json:"groups" binding:"required"`
}

// CancelOrderRequest cancellation payload.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (r CreateOrderRequest) toInput() service.CreateOrderInput {
	items := make([]service.CreateOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.CreateOrderItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}
	return service.CreateOrderInput{
		Date:      r.Date,
		MealType:  r.MealType,
		AddressID: r.AddressID,
		Items:     items,
		Notes:     r.Notes,
	}
}

// CreateOrder places one order for a single date, meal and address.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.PlaceOrder(uid, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
		return
	}
	response.Success(c, order)
}

// CreateBulkOrders places several delivery groups in one call. Groups
// succeed or fail independently; the response carries both.
func (h *Handler) CreateBulkOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req BulkCreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if len(req.Groups) == 0 {
		respondError(c, response.CodeBadRequest, "no order groups", nil)
		return
	}

	inputs := make([]service.CreateOrderInput, 0, len(req.Groups))
	for _, group := range req.Groups {
		inputs = append(inputs, group.toInput())
	}

	result, err := h.OrderService.CreateBulkOrders(uid, inputs)
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
		return
	}
	response.Success(c, result)
}

// ListOrders returns the user's order history.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.History(uid, service.OrderHistoryFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		MealType: strings.TrimSpace(c.Query("meal_type")),
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
		Page:     page,
		PageSize: pageSize,
	})
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

// TodayOrders returns the user's orders for today's delivery.
func (h *Handler) TodayOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orders, err := h.OrderService.TodayOrders(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, orders)
}

// GetOrder fetches one order.
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrder(uid, uint(orderID))
	if err != nil {
		respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo fetches one order by its number.
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "invalid order number", nil)
		return
	}

	order, err := h.OrderService.GetOrderByNo(uid, orderNo)
	if err != nil {
		respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder cancels an order before the meal's cutoff.
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CancelOrder(uid, uint(orderID), req.Reason)
	if err != nil {
		respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order cancel failed")
		return
	}
	response.Success(c, order)
}
