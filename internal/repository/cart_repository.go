package repository

import (
	"errors"

	"github.com/mealstack/internal/models"

	"gorm.io/gorm"
)

// CartRepository cart data access.
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByIDAndUser(id, userID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(id uint, quantity int) error
	Delete(id uint) error
	ClearByUser(userID uint) error
	DeleteGroup(userID uint, date, mealType string, addressID uint) error
	ClearByUserAndDate(userID uint, date string) error
	DeleteExpired(before string) (int64, error)
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM implementation.
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a cart repository.
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser lists a user's cart lines, most recently touched first.
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("date asc, meal_type asc, updated_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetByIDAndUser fetches a cart line owned by the user, nil when absent.
func (r *GormCartRepository) GetByIDAndUser(id, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert inserts the line, or bumps quantity on the existing line for the
// same user/item/date/meal/address combination.
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.Where(
		"user_id = ? AND menu_item_id = ? AND date = ? AND meal_type = ? AND address_id = ?",
		item.UserID, item.MenuItemID, item.Date, item.MealType, item.AddressID,
	).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   existing.Quantity + item.Quantity,
		"unit_price": item.UnitPrice,
		"item_name":  item.ItemName,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", existing.ID).First(item).Error
}

// UpdateQuantity sets the quantity on a line.
func (r *GormCartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes a line. Hard delete so the unique index never blocks a
// re-add of the same combination.
func (r *GormCartRepository) Delete(id uint) error {
	return r.db.Unscoped().Where("id = ?", id).Delete(&models.CartItem{}).Error
}

// ClearByUser removes every line of a user's cart.
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// DeleteGroup removes the lines of one delivery group.
func (r *GormCartRepository) DeleteGroup(userID uint, date, mealType string, addressID uint) error {
	return r.db.Unscoped().
		Where("user_id = ? AND date = ? AND meal_type = ? AND address_id = ?", userID, date, mealType, addressID).
		Delete(&models.CartItem{}).Error
}

// ClearByUserAndDate removes every line of a user's cart for one date.
func (r *GormCartRepository) ClearByUserAndDate(userID uint, date string) error {
	return r.db.Unscoped().
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&models.CartItem{}).Error
}

// DeleteExpired removes lines whose delivery date has passed.
func (r *GormCartRepository) DeleteExpired(before string) (int64, error) {
	result := r.db.Unscoped().Where("date < ?", before).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
