package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/repository"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MenuItemRequest create/update payload for a menu item.
type MenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MealType    string          `json:"meal_type"`
	IsSpecial   bool            `json:"is_special"`
	ImageURL    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

// SetMenuItemActiveRequest availability toggle payload.
type SetMenuItemActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (r MenuItemRequest) toInput() service.MenuItemInput {
	return service.MenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		MealType:    r.MealType,
		IsSpecial:   r.IsSpecial,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

func respondMenuError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrMenuItemNotFound):
		respondError(c, response.CodeNotFound, "menu item not found", nil)
	case errors.Is(err, service.ErrInvalidMealType):
		respondError(c, response.CodeBadRequest, "invalid meal type", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

func parseMenuItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid menu item id", nil)
		return 0, false
	}
	return uint(id), true
}

// ListMenuItems lists all menu items including inactive ones.
func (h *Handler) ListMenuItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.MenuService.List(repository.MenuListFilter{
		Page:     page,
		PageSize: pageSize,
		MealType: strings.TrimSpace(c.Query("meal_type")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondMenuError(c, err, "menu fetch failed")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// CreateMenuItem adds a menu item.
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.MenuService.Create(req.toInput())
	if err != nil {
		respondMenuError(c, err, "menu item create failed")
		return
	}
	response.Success(c, item)
}

// UpdateMenuItem edits a menu item. Order snapshots are unaffected.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.MenuService.Update(id, req.toInput())
	if err != nil {
		respondMenuError(c, err, "menu item update failed")
		return
	}
	response.Success(c, item)
}

// SetMenuItemActive toggles availability.
func (h *Handler) SetMenuItemActive(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}
	var req SetMenuItemActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.MenuService.SetActive(id, req.IsActive)
	if err != nil {
		respondMenuError(c, err, "menu item update failed")
		return
	}
	response.Success(c, item)
}

// DeleteMenuItem soft deletes a menu item.
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}
	if err := h.MenuService.Delete(id); err != nil {
		respondMenuError(c, err, "menu item delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
