package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/payment/razorpay"
	"github.com/mealstack/internal/queue"
	"github.com/mealstack/internal/repository"

	"github.com/shopspring/decimal"
)

// testNow a fixed clock: 09:00 server time, so breakfast's same-day cutoff
// (06:00) has passed while lunch (10:00) and dinner (16:00) are still open.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testDate(offset int) string {
	return testNow.AddDate(0, 0, offset).Format("2006-01-02")
}

type testEnv struct {
	userRepo     *repository.GormUserRepository
	addressRepo  *repository.GormAddressRepository
	menuRepo     *repository.GormMenuItemRepository
	capacityRepo *repository.GormCapacityRepository
	orderRepo    *repository.GormOrderRepository
	cartRepo     *repository.GormCartRepository
	paymentRepo  *repository.GormPaymentRepository

	capacitySvc *CapacityService
	orderSvc    *OrderService
	cartSvc     *CartService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if err := models.InitDB("sqlite", ":memory:", models.DBPoolConfig{MaxOpenConns: 1}); err != nil {
		t.Fatalf("init test db: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	env := &testEnv{
		userRepo:     repository.NewUserRepository(models.DB),
		addressRepo:  repository.NewAddressRepository(models.DB),
		menuRepo:     repository.NewMenuItemRepository(models.DB),
		capacityRepo: repository.NewCapacityRepository(models.DB),
		orderRepo:    repository.NewOrderRepository(models.DB),
		cartRepo:     repository.NewCartRepository(models.DB),
		paymentRepo:  repository.NewPaymentRepository(models.DB),
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client: %v", err)
	}

	env.capacitySvc = NewCapacityService(env.capacityRepo, time.Minute)
	env.orderSvc = NewOrderService(
		env.orderRepo,
		env.capacityRepo,
		env.addressRepo,
		env.menuRepo,
		env.cartRepo,
		env.capacitySvc,
		queueClient,
		decimal.NewFromInt(5),
	)
	env.orderSvc.now = func() time.Time { return testNow }
	env.cartSvc = NewCartService(env.cartRepo, env.menuRepo, env.orderSvc, decimal.NewFromInt(5))
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		Status:       "active",
	}
	if err := models.DB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createAddress(t *testing.T, userID uint, verified bool) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:     userID,
		Label:      "home",
		Line1:      "12 Lake View Road",
		City:       "Pune",
		Pincode:    "411001",
		IsActive:   true,
		IsVerified: verified,
	}
	if err := models.DB.Create(address).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return address
}

func (e *testEnv) createMenuItem(t *testing.T, name, mealType string, price int64, active bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:     name,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		MealType: mealType,
		IsActive: active,
	}
	if err := models.DB.Create(item).Error; err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	if !active {
		// Create bypasses the default, force the flag explicitly.
		if err := models.DB.Model(item).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate menu item: %v", err)
		}
		item.IsActive = false
	}
	return item
}

func (e *testEnv) bookedFor(t *testing.T, date, mealType string) int {
	t.Helper()
	record, err := e.capacityRepo.GetByDate(date)
	if err != nil {
		t.Fatalf("get capacity: %v", err)
	}
	if record == nil {
		return 0
	}
	return record.Booked(mealType)
}

func (e *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := models.DB.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return count
}

// fakeGateway a stand-in payment gateway for tests.
type fakeGateway struct {
	validSignature string
	createErr      error
	createCalls    int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (*razorpay.Order, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_fake_%d", g.createCalls),
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == g.validSignature
}
