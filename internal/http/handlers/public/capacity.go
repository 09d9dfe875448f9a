package public

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

// GetCapacity returns remaining capacity per meal for a run of dates.
// Defaults to the current ordering window starting today.
func (h *Handler) GetCapacity(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	if from == "" {
		from = time.Now().Format(constants.DateLayout)
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(constants.OrderAdvanceDays+1)))

	views, err := h.CapacityService.View(from, days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			respondError(c, response.CodeBadRequest, "invalid date", nil)
			return
		}
		respondError(c, response.CodeInternal, "capacity fetch failed", err)
		return
	}
	response.Success(c, gin.H{"days": views})
}
