package repository

import (
	"errors"

	"github.com/mealstack/internal/models"

	"gorm.io/gorm"
)

// MenuItemRepository menu catalog data access.
type MenuItemRepository interface {
	Create(item *models.MenuItem) error
	Update(item *models.MenuItem) error
	GetByID(id uint) (*models.MenuItem, error)
	ListByIDs(ids []uint) ([]models.MenuItem, error)
	List(filter MenuListFilter) ([]models.MenuItem, int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormMenuItemRepository
}

// GormMenuItemRepository GORM implementation.
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewMenuItemRepository creates a menu item repository.
func NewMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormMenuItemRepository) WithTx(tx *gorm.DB) *GormMenuItemRepository {
	if tx == nil {
		return r
	}
	return &GormMenuItemRepository{db: tx}
}

// Create inserts a menu item.
func (r *GormMenuItemRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

// Update saves a menu item.
func (r *GormMenuItemRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

// GetByID fetches a menu item, nil when absent.
func (r *GormMenuItemRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs fetches menu items by id list.
func (r *GormMenuItemRepository) ListByIDs(ids []uint) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return []models.MenuItem{}, nil
	}
	var items []models.MenuItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List lists menu items matching the filter.
func (r *GormMenuItemRepository) List(filter MenuListFilter) ([]models.MenuItem, int64, error) {
	query := r.db.Model(&models.MenuItem{})

	if filter.MealType != "" {
		query = query.Where("meal_type = ?", filter.MealType)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.MenuItem
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Delete soft deletes a menu item.
func (r *GormMenuItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.MenuItem{}, id).Error
}
