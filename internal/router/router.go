package router

import (
	"fmt"
	"strings"

	"github.com/mealstack/internal/cache"
	"github.com/mealstack/internal/config"
	"github.com/mealstack/internal/constants"
	adminhandlers "github.com/mealstack/internal/http/handlers/admin"
	publichandlers "github.com/mealstack/internal/http/handlers/public"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware and routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Open endpoints.
		public := apiV1.Group("/public")
		{
			public.GET("/menu", publicHandler.GetMenu)
			public.GET("/menu/:id", publicHandler.GetMenuItem)
			public.GET("/capacity", publicHandler.GetCapacity)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// Customer endpoints.
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Me)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)

			user.GET("/addresses", publicHandler.ListAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:id", publicHandler.DeleteCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/cart/checkout", publicHandler.CheckoutCart)

			user.POST("/orders", publicHandler.CreateOrder)
			user.POST("/orders/bulk", publicHandler.CreateBulkOrders)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/today", publicHandler.TodayOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			user.POST("/payments/initiate", publicHandler.InitiatePayment)
			user.POST("/payments/confirm", publicHandler.ConfirmPayment)
			user.GET("/payments", publicHandler.ListPayments)
		}

		// Ops endpoints.
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), AdminRequiredMiddleware())
		{
			admin.GET("/capacity", adminHandler.GetCapacity)
			admin.PUT("/capacity/:date", adminHandler.SetCapacityLimit)
			admin.PUT("/capacity", adminHandler.BulkSetCapacityLimits)

			admin.GET("/menu", adminHandler.ListMenuItems)
			admin.POST("/menu", adminHandler.CreateMenuItem)
			admin.PUT("/menu/:id", adminHandler.UpdateMenuItem)
			admin.PATCH("/menu/:id/active", adminHandler.SetMenuItemActive)
			admin.DELETE("/menu/:id", adminHandler.DeleteMenuItem)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

			admin.PATCH("/addresses/:id/verify", adminHandler.VerifyAddress)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
