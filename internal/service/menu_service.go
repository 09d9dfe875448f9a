package service

import (
	"strings"

	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/repository"

	"github.com/shopspring/decimal"
)

// MenuService menu catalog management.
type MenuService struct {
	menuRepo repository.MenuItemRepository
}

// NewMenuService creates the menu service.
func NewMenuService(menuRepo repository.MenuItemRepository) *MenuService {
	return &MenuService{menuRepo: menuRepo}
}

// MenuItemInput create/update payload for a menu item.
type MenuItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MealType    string          `json:"meal_type"`
	IsSpecial   bool            `json:"is_special"`
	ImageURL    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

// List lists menu items. Public callers pass onlyActive=true.
func (s *MenuService) List(filter repository.MenuListFilter) ([]models.MenuItem, int64, error) {
	if filter.MealType != "" && !validMealType(filter.MealType) {
		return nil, 0, ErrInvalidMealType
	}
	return s.menuRepo.List(filter)
}

// Get fetches one menu item.
func (s *MenuService) Get(id uint) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}
	return item, nil
}

// Create adds a menu item.
func (s *MenuService) Create(input MenuItemInput) (*models.MenuItem, error) {
	if !validMealType(input.MealType) {
		return nil, ErrInvalidMealType
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrMenuItemNotFound
	}
	item := &models.MenuItem{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(input.Price),
		MealType:    input.MealType,
		IsSpecial:   input.IsSpecial,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		IsActive:    true,
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.menuRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update rewrites a menu item. Existing orders keep their snapshots.
func (s *MenuService) Update(id uint, input MenuItemInput) (*models.MenuItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.MealType != "" {
		if !validMealType(input.MealType) {
			return nil, ErrInvalidMealType
		}
		item.MealType = input.MealType
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		item.Description = desc
	}
	if !input.Price.IsZero() {
		item.Price = models.NewMoneyFromDecimal(input.Price)
	}
	if url := strings.TrimSpace(input.ImageURL); url != "" {
		item.ImageURL = url
	}
	item.IsSpecial = input.IsSpecial
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.menuRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetActive flips an item's availability without touching the rest.
func (s *MenuService) SetActive(id uint, active bool) (*models.MenuItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	item.IsActive = active
	if err := s.menuRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete soft deletes a menu item.
func (s *MenuService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.menuRepo.Delete(id)
}
