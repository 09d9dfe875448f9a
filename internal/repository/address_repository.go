package repository

import (
	"errors"

	"github.com/mealstack/internal/models"

	"gorm.io/gorm"
)

// AddressRepository address book data access.
type AddressRepository interface {
	Create(address *models.Address) error
	Update(address *models.Address) error
	GetByID(id uint) (*models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	ListByUser(userID uint) ([]models.Address, error)
	ListByIDsAndUser(ids []uint, userID uint) ([]models.Address, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormAddressRepository
}

// GormAddressRepository GORM implementation.
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates an address repository.
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// Create inserts an address.
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// Update saves an address.
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// GetByID fetches an address, nil when absent.
func (r *GormAddressRepository) GetByID(id uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetByIDAndUser fetches an address owned by the user, nil when absent.
func (r *GormAddressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	var address models.Address
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListByUser lists a user's addresses.
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// ListByIDsAndUser lists the user's addresses matching the given ids.
func (r *GormAddressRepository) ListByIDsAndUser(ids []uint, userID uint) ([]models.Address, error) {
	if len(ids) == 0 {
		return []models.Address{}, nil
	}
	var addresses []models.Address
	err := r.db.Where("id IN ? AND user_id = ?", ids, userID).Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// Delete soft deletes an address. Orders keep their snapshot either way.
func (r *GormAddressRepository) Delete(id uint) error {
	return r.db.Delete(&models.Address{}, id).Error
}
