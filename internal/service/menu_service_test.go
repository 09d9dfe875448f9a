package service

import (
	"errors"
	"testing"

	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/repository"

	"github.com/shopspring/decimal"
)

func TestMenuCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.menuRepo)

	item, err := svc.Create(MenuItemInput{
		Name:     "  Veg Thali  ",
		Price:    decimal.NewFromInt(120),
		MealType: constants.MealTypeLunch,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Name != "Veg Thali" {
		t.Fatalf("name should be trimmed, got %q", item.Name)
	}
	if !item.IsActive {
		t.Fatalf("new item should default to active")
	}

	got, err := svc.Get(item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Veg Thali" {
		t.Fatalf("get name want Veg Thali, got %q", got.Name)
	}

	if _, err := svc.Get(9999); !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("missing item want ErrMenuItemNotFound, got %v", err)
	}
	if _, err := svc.Create(MenuItemInput{Name: "X", MealType: "brunch"}); !errors.Is(err, ErrInvalidMealType) {
		t.Fatalf("bad meal type want ErrInvalidMealType, got %v", err)
	}
}

func TestMenuListOnlyActive(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.menuRepo)

	env.createMenuItem(t, "Veg Thali", constants.MealTypeLunch, 120, true)
	env.createMenuItem(t, "Retired Dish", constants.MealTypeLunch, 90, false)
	env.createMenuItem(t, "Poha", constants.MealTypeBreakfast, 45, true)

	items, total, err := svc.List(repository.MenuListFilter{OnlyActive: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("active list want 2, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(repository.MenuListFilter{OnlyActive: true, MealType: constants.MealTypeLunch})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if total != 1 || items[0].Name != "Veg Thali" {
		t.Fatalf("lunch list want just Veg Thali, got total=%d", total)
	}

	if _, _, err := svc.List(repository.MenuListFilter{MealType: "brunch"}); !errors.Is(err, ErrInvalidMealType) {
		t.Fatalf("bad meal type filter want ErrInvalidMealType, got %v", err)
	}
}

func TestMenuUpdateKeepsUnsetFields(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.menuRepo)
	item := env.createMenuItem(t, "Veg Thali", constants.MealTypeLunch, 120, true)

	updated, err := svc.Update(item.ID, MenuItemInput{Price: decimal.NewFromInt(140)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Veg Thali" {
		t.Fatalf("empty name must not overwrite, got %q", updated.Name)
	}
	if got := updated.Price.String(); got != "140.00" {
		t.Fatalf("price want 140.00, got %s", got)
	}
	if updated.MealType != constants.MealTypeLunch {
		t.Fatalf("empty meal type must not overwrite, got %s", updated.MealType)
	}
}

func TestMenuSetActiveAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.menuRepo)
	item := env.createMenuItem(t, "Veg Thali", constants.MealTypeLunch, 120, true)

	updated, err := svc.SetActive(item.ID, false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("item should be inactive")
	}

	if err := svc.Delete(item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(item.ID); !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("deleted item want ErrMenuItemNotFound, got %v", err)
	}
	if err := svc.Delete(item.ID); !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("double delete want ErrMenuItemNotFound, got %v", err)
	}
}
