package provider

import (
	"time"

	"github.com/mealstack/internal/cache"
	"github.com/mealstack/internal/config"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"
	"github.com/mealstack/internal/payment/razorpay"
	"github.com/mealstack/internal/queue"
	"github.com/mealstack/internal/repository"
	"github.com/mealstack/internal/service"

	"github.com/shopspring/decimal"
)

// Container dependency injection container.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo     repository.UserRepository
	AddressRepo  repository.AddressRepository
	MenuItemRepo repository.MenuItemRepository
	CapacityRepo repository.CapacityRepository
	OrderRepo    repository.OrderRepository
	CartRepo     repository.CartRepository
	PaymentRepo  repository.PaymentRepository

	// Services
	UserAuthService *service.UserAuthService
	AddressService  *service.AddressService
	MenuService     *service.MenuService
	CapacityService *service.CapacityService
	OrderService    *service.OrderService
	CartService     *service.CartService
	PaymentService  *service.PaymentService
}

// NewContainer wires repositories and services.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.MenuItemRepo = repository.NewMenuItemRepository(db)
	c.CapacityRepo = repository.NewCapacityRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	deliveryCharge, err := decimal.NewFromString(c.Config.Order.DeliveryCharge)
	if err != nil {
		logger.Warnw("provider_delivery_charge_invalid",
			"value", c.Config.Order.DeliveryCharge,
			"error", err,
		)
		deliveryCharge = decimal.NewFromInt(5)
	}
	viewTTL := time.Duration(c.Config.Order.CapacityViewTTLSecs) * time.Second

	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.MenuService = service.NewMenuService(c.MenuItemRepo)
	c.CapacityService = service.NewCapacityService(c.CapacityRepo, viewTTL)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.CapacityRepo,
		c.AddressRepo,
		c.MenuItemRepo,
		c.CartRepo,
		c.CapacityService,
		c.QueueClient,
		deliveryCharge,
	)
	c.CartService = service.NewCartService(c.CartRepo, c.MenuItemRepo, c.OrderService, deliveryCharge)

	gateway := razorpay.New(razorpay.Config{
		KeyID:     c.Config.Payment.KeyID,
		KeySecret: c.Config.Payment.KeySecret,
		Timeout:   time.Duration(c.Config.Payment.TimeoutMS) * time.Millisecond,
	})
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.OrderRepo,
		c.CartService,
		c.OrderService,
		gateway,
		c.Config.Payment.Currency,
	)
}
