package service

import (
	"strings"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/repository"
)

// AddressService delivery address book. New and edited addresses drop back
// to unverified until ops re-verifies them.
type AddressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService creates the address service.
func NewAddressService(addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

// AddressInput create/update payload for an address.
type AddressInput struct {
	Label    string `json:"label"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case constants.AddressLabelHome, constants.AddressLabelWork:
		return label
	default:
		return constants.AddressLabelOther
	}
}

// List lists a user's addresses.
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	return s.addressRepo.ListByUser(userID)
}

// Get fetches an owned address.
func (s *AddressService) Get(userID, id uint) (*models.Address, error) {
	address, err := s.addressRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// Create adds an address, unverified until ops checks it.
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	line1 := strings.TrimSpace(input.Line1)
	if line1 == "" {
		return nil, ErrInvalidAddress
	}
	address := &models.Address{
		UserID:   userID,
		Label:    normalizeLabel(input.Label),
		Line1:    line1,
		Line2:    strings.TrimSpace(input.Line2),
		Landmark: strings.TrimSpace(input.Landmark),
		City:     strings.TrimSpace(input.City),
		Pincode:  strings.TrimSpace(input.Pincode),
		IsActive: true,
	}
	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Update edits an address. Any change invalidates the verification.
func (s *AddressService) Update(userID, id uint, input AddressInput) (*models.Address, error) {
	address, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if line1 := strings.TrimSpace(input.Line1); line1 != "" {
		address.Line1 = line1
	}
	address.Label = normalizeLabel(input.Label)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.Landmark = strings.TrimSpace(input.Landmark)
	address.City = strings.TrimSpace(input.City)
	address.Pincode = strings.TrimSpace(input.Pincode)
	address.IsVerified = false
	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete soft deletes an owned address. Orders keep their snapshots.
func (s *AddressService) Delete(userID, id uint) error {
	address, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return s.addressRepo.Delete(address.ID)
}

// Verify marks an address deliverable. Admin only.
func (s *AddressService) Verify(id uint, verified bool) (*models.Address, error) {
	address, err := s.addressRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	address.IsVerified = verified
	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}
	logger.Infow("address_verification_updated",
		"address_id", address.ID,
		"user_id", address.UserID,
		"verified", verified,
	)
	return address, nil
}
