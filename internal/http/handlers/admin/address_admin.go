package admin

import (
	"errors"
	"strconv"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// VerifyAddressRequest verification toggle payload.
type VerifyAddressRequest struct {
	Verified bool `json:"verified"`
}

// VerifyAddress marks an address deliverable or not. Orders only accept
// verified addresses.
func (h *Handler) VerifyAddress(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}
	var req VerifyAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	address, err := h.AddressService.Verify(uint(id), req.Verified)
	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			respondError(c, response.CodeNotFound, "address not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "address verification failed", err)
		return
	}
	response.Success(c, address)
}
