package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/models"

	"gorm.io/gorm"
)

// CapacityRepository meal capacity data access.
// All counter mutations are single conditional UPDATEs; callers decide what a
// zero rows-affected result means.
type CapacityRepository interface {
	WithTx(tx *gorm.DB) CapacityRepository
	GetByDate(date string) (*models.MealCapacity, error)
	GetOrCreate(date string) (*models.MealCapacity, error)
	ListRange(from, to string) ([]models.MealCapacity, error)
	Reserve(date, mealType string, qty int) (int64, error)
	Release(date, mealType string, qty int) (int64, error)
	SetLimit(date, mealType string, newLimit int) (int64, error)
}

// GormCapacityRepository GORM implementation.
type GormCapacityRepository struct {
	db *gorm.DB
}

// NewCapacityRepository creates a capacity repository.
func NewCapacityRepository(db *gorm.DB) *GormCapacityRepository {
	return &GormCapacityRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormCapacityRepository) WithTx(tx *gorm.DB) CapacityRepository {
	if tx == nil {
		return r
	}
	return &GormCapacityRepository{db: tx}
}

// mealColumns maps a meal type to its booked/limit column pair.
func mealColumns(mealType string) (bookedCol, limitCol string, err error) {
	switch mealType {
	case constants.MealTypeBreakfast:
		return "breakfast_booked", "breakfast_limit", nil
	case constants.MealTypeLunch:
		return "lunch_booked", "lunch_limit", nil
	case constants.MealTypeDinner:
		return "dinner_booked", "dinner_limit", nil
	default:
		return "", "", fmt.Errorf("unknown meal type: %s", mealType)
	}
}

// GetByDate fetches a date's record, nil when absent.
func (r *GormCapacityRepository) GetByDate(date string) (*models.MealCapacity, error) {
	var record models.MealCapacity
	if err := r.db.Where("date = ?", date).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetOrCreate fetches a date's record, creating it with default limits when
// absent. A concurrent create losing the unique-index race falls back to a
// re-fetch.
func (r *GormCapacityRepository) GetOrCreate(date string) (*models.MealCapacity, error) {
	record := models.MealCapacity{
		Date:           date,
		BreakfastLimit: models.DefaultMealCapacity,
		LunchLimit:     models.DefaultMealCapacity,
		DinnerLimit:    models.DefaultMealCapacity,
	}
	err := r.db.Where(models.MealCapacity{Date: date}).
		Attrs(record).
		FirstOrCreate(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByDate(date)
		}
		return nil, err
	}
	return &record, nil
}

// ListRange lists records with from <= date <= to, ordered by date.
func (r *GormCapacityRepository) ListRange(from, to string) ([]models.MealCapacity, error) {
	var records []models.MealCapacity
	if err := r.db.Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Reserve books qty slots if and only if the limit allows it. Returns the
// number of rows updated; 0 means the date is full (or has no record).
func (r *GormCapacityRepository) Reserve(date, mealType string, qty int) (int64, error) {
	bookedCol, limitCol, err := mealColumns(mealType)
	if err != nil {
		return 0, err
	}
	result := r.db.Model(&models.MealCapacity{}).
		Where(fmt.Sprintf("date = ? AND %s + ? <= %s", bookedCol, limitCol), date, qty).
		Updates(map[string]interface{}{
			bookedCol:    gorm.Expr(fmt.Sprintf("%s + ?", bookedCol), qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Release returns qty slots, flooring the booked count at zero. A missing
// record is a no-op (0 rows affected).
func (r *GormCapacityRepository) Release(date, mealType string, qty int) (int64, error) {
	bookedCol, _, err := mealColumns(mealType)
	if err != nil {
		return 0, err
	}
	floor := greatestFunc(r.db)
	result := r.db.Model(&models.MealCapacity{}).
		Where("date = ?", date).
		Updates(map[string]interface{}{
			bookedCol:    gorm.Expr(fmt.Sprintf("%s(%s - ?, 0)", floor, bookedCol), qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetLimit updates a meal's limit only when the new limit still covers the
// booked count. 0 rows affected means the record is absent or booked exceeds
// the new limit; callers disambiguate via GetByDate.
func (r *GormCapacityRepository) SetLimit(date, mealType string, newLimit int) (int64, error) {
	bookedCol, limitCol, err := mealColumns(mealType)
	if err != nil {
		return 0, err
	}
	result := r.db.Model(&models.MealCapacity{}).
		Where(fmt.Sprintf("date = ? AND %s <= ?", bookedCol), date, newLimit).
		Updates(map[string]interface{}{
			limitCol:     newLimit,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
