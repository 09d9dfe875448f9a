package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/repository"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMenu lists active menu items.
func (h *Handler) GetMenu(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.MenuService.List(repository.MenuListFilter{
		Page:       page,
		PageSize:   pageSize,
		MealType:   strings.TrimSpace(c.Query("meal_type")),
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: true,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidMealType) {
			respondError(c, response.CodeBadRequest, "invalid meal type", nil)
			return
		}
		respondError(c, response.CodeInternal, "menu fetch failed", err)
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

// GetMenuItem fetches one active menu item.
func (h *Handler) GetMenuItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid menu item id", nil)
		return
	}
	item, err := h.MenuService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			respondError(c, response.CodeNotFound, "menu item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "menu fetch failed", err)
		return
	}
	if !item.IsActive {
		respondError(c, response.CodeNotFound, "menu item not found", nil)
		return
	}
	response.Success(c, item)
}
