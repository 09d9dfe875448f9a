package service

import (
	"context"
	"time"

	"github.com/mealstack/internal/cache"
	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/repository"
)

// CapacityService meal capacity ledger. Counter mutations go through the
// repository's conditional updates so booked never crosses the limit, even
// under concurrent placement.
type CapacityService struct {
	capacityRepo repository.CapacityRepository
	viewTTL      time.Duration
}

// NewCapacityService creates the capacity service.
func NewCapacityService(capacityRepo repository.CapacityRepository, viewTTL time.Duration) *CapacityService {
	if viewTTL <= 0 {
		viewTTL = time.Minute
	}
	return &CapacityService{
		capacityRepo: capacityRepo,
		viewTTL:      viewTTL,
	}
}

// MealCapacityView one meal's counters for the capacity widget.
type MealCapacityView struct {
	Limit     int `json:"limit"`
	Booked    int `json:"booked"`
	Remaining int `json:"remaining"`
}

// DayCapacityView one date's counters across all meal types.
type DayCapacityView struct {
	Date      string           `json:"date"`
	Breakfast MealCapacityView `json:"breakfast"`
	Lunch     MealCapacityView `json:"lunch"`
	Dinner    MealCapacityView `json:"dinner"`
}

func validMealType(mealType string) bool {
	for _, m := range constants.MealTypes {
		if m == mealType {
			return true
		}
	}
	return false
}

// GetOrCreate fetches a date's record, creating it with default limits.
func (s *CapacityService) GetOrCreate(date string) (*models.MealCapacity, error) {
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.capacityRepo.GetOrCreate(date)
}

// HasAvailability reports whether qty slots fit. A date without a record is
// treated as unlimited.
func (s *CapacityService) HasAvailability(date, mealType string, qty int) (bool, error) {
	if !validMealType(mealType) {
		return false, ErrInvalidMealType
	}
	record, err := s.capacityRepo.GetByDate(date)
	if err != nil {
		return false, err
	}
	if record == nil {
		return true, nil
	}
	return record.Booked(mealType)+qty <= record.Limit(mealType), nil
}

// Reserve books qty slots atomically. Fails with ErrCapacityExceeded when
// the date is full; the booked count is untouched in that case.
func (s *CapacityService) Reserve(date, mealType string, qty int) error {
	if !validMealType(mealType) {
		return ErrInvalidMealType
	}
	if _, err := s.capacityRepo.GetOrCreate(date); err != nil {
		return err
	}
	affected, err := s.capacityRepo.Reserve(date, mealType, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCapacityExceeded
	}
	s.invalidateView(date)
	return nil
}

// Release returns qty slots, floored at zero. A date without a record is a
// no-op.
func (s *CapacityService) Release(date, mealType string, qty int) error {
	if !validMealType(mealType) {
		return ErrInvalidMealType
	}
	affected, err := s.capacityRepo.Release(date, mealType, qty)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.invalidateView(date)
	}
	return nil
}

// SetLimit updates a meal's limit. Creating the date's record on demand, it
// refuses any limit below the current booked count.
func (s *CapacityService) SetLimit(date, mealType string, newLimit int) (*models.MealCapacity, error) {
	if !validMealType(mealType) {
		return nil, ErrInvalidMealType
	}
	if newLimit < 0 {
		return nil, ErrInvalidCapacity
	}
	if _, err := s.GetOrCreate(date); err != nil {
		return nil, err
	}
	affected, err := s.capacityRepo.SetLimit(date, mealType, newLimit)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Record exists at this point, so zero rows means booked > newLimit.
		return nil, ErrInvalidCapacity
	}
	s.invalidateView(date)
	return s.capacityRepo.GetByDate(date)
}

// BulkLimitResult one date's outcome of a bulk limit update.
type BulkLimitResult struct {
	Date  string `json:"date"`
	Error string `json:"error,omitempty"`
}

// BulkSetLimits applies per-meal limits to a run of days starting at from.
// Failing dates are reported individually and do not abort the rest.
func (s *CapacityService) BulkSetLimits(from string, days int, limits map[string]int) ([]BulkLimitResult, error) {
	start, err := time.Parse(constants.DateLayout, from)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if days <= 0 {
		days = 1
	}
	results := make([]BulkLimitResult, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(constants.DateLayout)
		result := BulkLimitResult{Date: date}
		for mealType, limit := range limits {
			if _, err := s.SetLimit(date, mealType, limit); err != nil {
				result.Error = err.Error()
				logger.Warnw("capacity_bulk_set_limit_failed",
					"date", date,
					"meal_type", mealType,
					"limit", limit,
					"error", err,
				)
				break
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// View renders limit/booked/remaining per meal type for a run of days
// starting at from. Dates get their record created on first view, matching
// the admin widget the data feeds.
func (s *CapacityService) View(from string, days int) ([]DayCapacityView, error) {
	start, err := time.Parse(constants.DateLayout, from)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if days <= 0 {
		days = 1
	}
	if days > 31 {
		days = 31
	}

	ctx := context.Background()
	views := make([]DayCapacityView, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(constants.DateLayout)

		var view DayCapacityView
		hit, err := cache.GetCapacityView(ctx, date, &view)
		if err != nil {
			logger.Warnw("capacity_view_cache_read_failed", "date", date, "error", err)
		}
		if hit {
			views = append(views, view)
			continue
		}

		record, err := s.capacityRepo.GetOrCreate(date)
		if err != nil {
			return nil, err
		}
		view = buildDayView(record)
		if err := cache.SetCapacityView(ctx, date, view, s.viewTTL); err != nil {
			logger.Warnw("capacity_view_cache_write_failed", "date", date, "error", err)
		}
		views = append(views, view)
	}
	return views, nil
}

func buildDayView(record *models.MealCapacity) DayCapacityView {
	return DayCapacityView{
		Date:      record.Date,
		Breakfast: buildMealView(record, constants.MealTypeBreakfast),
		Lunch:     buildMealView(record, constants.MealTypeLunch),
		Dinner:    buildMealView(record, constants.MealTypeDinner),
	}
}

func buildMealView(record *models.MealCapacity, mealType string) MealCapacityView {
	limit := record.Limit(mealType)
	booked := record.Booked(mealType)
	remaining := limit - booked
	if remaining < 0 {
		remaining = 0
	}
	return MealCapacityView{Limit: limit, Booked: booked, Remaining: remaining}
}

func (s *CapacityService) invalidateView(date string) {
	if err := cache.InvalidateCapacityView(context.Background(), date); err != nil {
		logger.Warnw("capacity_view_cache_invalidate_failed", "date", date, "error", err)
	}
}
