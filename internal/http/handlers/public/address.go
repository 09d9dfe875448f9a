package public

import (
	"strconv"

	"github.com/mealstack/internal/http/response"
	"github.com/mealstack/internal/service"

	"github.com/gin-gonic/gin"
)

// AddressRequest create/update payload for an address.
type AddressRequest struct {
	Label    string `json:"label"`
	Line1    string `json:"line1" binding:"required"`
	Line2    string `json:"line2"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

func (r AddressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		Label:    r.Label,
		Line1:    r.Line1,
		Line2:    r.Line2,
		Landmark: r.Landmark,
		City:     r.City,
		Pincode:  r.Pincode,
	}
}

func parseAddressID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return 0, false
	}
	return uint(id), true
}

// ListAddresses lists the user's addresses.
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addresses, err := h.AddressService.List(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "address fetch failed", err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress adds an address.
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	address, err := h.AddressService.Create(uid, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, addressErrorRules, response.CodeInternal, "address create failed")
		return
	}
	response.Success(c, address)
}

// UpdateAddress edits an address.
func (h *Handler) UpdateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseAddressID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	address, err := h.AddressService.Update(uid, id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, addressErrorRules, response.CodeInternal, "address update failed")
		return
	}
	response.Success(c, address)
}

// DeleteAddress removes an address.
func (h *Handler) DeleteAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseAddressID(c)
	if !ok {
		return
	}
	if err := h.AddressService.Delete(uid, id); err != nil {
		respondWithMappedError(c, err, addressErrorRules, response.CodeInternal, "address delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
