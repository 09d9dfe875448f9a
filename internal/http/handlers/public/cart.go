package public

import (
	"strconv"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest add-to-cart payload.
type CartItemRequest struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	MealType   string `json:"meal_type" binding:"required"`
	AddressID  uint   `json:"address_id" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// CartQuantityRequest quantity change payload.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the cart grouped by date, meal and address.
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.View(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, view)
}

// AddCartItem adds or merges a cart line.
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	line, err := h.CartService.AddItem(uid, service.AddCartItemInput{
		MenuItemID: req.MenuItemID,
		Date:       req.Date,
		MealType:   req.MealType,
		AddressID:  req.AddressID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, line)
}

// UpdateCartItem sets a line's quantity; zero removes it.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "invalid cart item id", nil)
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.UpdateQuantity(uid, uint(itemID), req.Quantity); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem removes a cart line.
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "invalid cart item id", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, uint(itemID)); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "cart clear failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// CheckoutCart converts the cart into orders, one per delivery group.
func (h *Handler) CheckoutCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.CartService.Checkout(uid)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, result)
}
