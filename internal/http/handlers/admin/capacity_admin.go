package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// SetCapacityLimitRequest single-day limit change.
type SetCapacityLimitRequest struct {
	MealType string `json:"meal_type" binding:"required"`
	Limit    int    `json:"limit"`
}

// BulkSetCapacityRequest limit change over a run of days. Limits maps
// meal type to the new limit; omitted meals keep their current value.
type BulkSetCapacityRequest struct {
	From   string         `json:"from" binding:"required"`
	Days   int            `json:"days"`
	Limits map[string]int `json:"limits" binding:"required"`
}

func respondCapacityError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, response.CodeBadRequest, "invalid date", nil)
	case errors.Is(err, service.ErrInvalidMealType):
		respondError(c, response.CodeBadRequest, "invalid meal type", nil)
	case errors.Is(err, service.ErrInvalidCapacity):
		respondError(c, response.CodeBadRequest, "limit below booked count or negative", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// SetCapacityLimit sets one meal's limit for one date. Lowering below
// the booked count is refused.
func (h *Handler) SetCapacityLimit(c *gin.Context) {
	date := strings.TrimSpace(c.Param("date"))
	var req SetCapacityLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	capacity, err := h.CapacityService.SetLimit(date, req.MealType, req.Limit)
	if err != nil {
		respondCapacityError(c, err, "capacity update failed")
		return
	}
	response.Success(c, capacity)
}

// BulkSetCapacityLimits applies limits across a run of days.
func (h *Handler) BulkSetCapacityLimits(c *gin.Context) {
	var req BulkSetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	results, err := h.CapacityService.BulkSetLimits(req.From, req.Days, req.Limits)
	if err != nil {
		respondCapacityError(c, err, "capacity update failed")
		return
	}
	response.Success(c, gin.H{"results": results})
}

// GetCapacity returns per-meal counters for a run of dates.
func (h *Handler) GetCapacity(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	if from == "" {
		from = time.Now().Format(constants.DateLayout)
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	views, err := h.CapacityService.View(from, days)
	if err != nil {
		respondCapacityError(c, err, "capacity fetch failed")
		return
	}
	response.Success(c, gin.H{"days": views})
}
