package routes

import (
	"time"

	"foodcart_back_end/internal/handlers"
	"foodcart_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Orders        *handlers.OrderHandler
	Webhook       *handlers.WebhookHandler
	Restaurants   *handlers.RestaurantHandler
	Menus         *handlers.MenuHandler
	OwnerRequests *handlers.OwnerRequestHandler
	Users         *handlers.UserHandler
	Live          *handlers.LiveHandler
	Health        *handlers.HealthHandler
}

type Config struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Redis backs the rate limiters. Limits are skipped when nil.
	Redis redis.Cmdable
}

// New builds the engine with the global middleware and every route.
func New(h Handlers, cfg Config, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logging(logger),
		cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	RegisterRoutes(r, h, cfg, logger)
	return r
}

func RegisterRoutes(r *gin.Engine, h Handlers, cfg Config, logger zerolog.Logger) {
	auth := middleware.AuthRequired(cfg.JWTSecret, logger)
	admin := []gin.HandlerFunc{auth, middleware.RequireSuperAdmin}

	limit := func(name string, max int64, key middleware.KeyFunc) gin.HandlerFunc {
		if cfg.Redis == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(cfg.Redis, name, max, middleware.RateWindow, key, logger)
	}
	paymentLimit := limit("payment", middleware.PaymentMaxRequests, middleware.ByUser)
	searchLimit := limit("search", middleware.SearchMaxRequests, middleware.ByIP)

	r.GET("/health", h.Health.Health)

	// Users
	user := r.Group("/user", auth)
	{
		user.GET("/profile", h.Users.Profile)
		user.PUT("/profile", h.Users.UpdateProfile)
	}

	// Restaurants
	restaurant := r.Group("/restaurant")
	{
		restaurant.GET("/all", h.Restaurants.List)
		restaurant.GET("/search/:text", searchLimit, h.Restaurants.Search)
		restaurant.GET("/order", auth, h.Orders.ListForRestaurant)
		restaurant.GET("/:id", h.Restaurants.Get)
		restaurant.GET("", auth, h.Restaurants.Mine)
		restaurant.POST("", auth, h.Restaurants.Create)
		restaurant.PUT("", auth, h.Restaurants.Update)
		restaurant.POST("/repair-duplicates", append(admin, middleware.Audit("restaurant.repair_duplicates", logger), h.Restaurants.RepairDuplicates)...)
	}

	// Menus
	menu := r.Group("/menu")
	{
		menu.GET("/:id", h.Menus.Get)
		menu.POST("", auth, h.Menus.Create)
		menu.PUT("/:id", auth, h.Menus.Update)
		menu.DELETE("/:id", auth, h.Menus.Delete)
	}

	// Orders. The webhook authenticates through its signature.
	r.POST("/orders/webhook", h.Webhook.Handle)

	orders := r.Group("/orders", auth)
	{
		orders.POST("/create-payment-intent", paymentLimit, h.Orders.CreatePaymentIntent)
		orders.POST("/checkout/create-checkout-session", paymentLimit, h.Orders.CreateCheckoutSession)
		orders.POST("/confirm-order", h.Orders.ConfirmOrder)
		orders.GET("", h.Orders.ListMine)
		orders.GET("/live", h.Live.Stream)
		orders.GET("/:orderId", h.Orders.Get)
		orders.GET("/:orderId/history", h.Orders.History)
		orders.PUT("/:orderId/cancel", h.Orders.CancelOrder)
		orders.PUT("/:orderId/status", middleware.Audit("order.update_status", logger), h.Orders.UpdateOrderStatus)
	}

	// Owner requests
	owner := r.Group("/owner-request", auth)
	{
		owner.POST("/request", h.OwnerRequests.Request)
		owner.POST("/verify-otp", h.OwnerRequests.VerifyOTP)
		owner.POST("/resend-otp", h.OwnerRequests.ResendOTP)
		owner.GET("/me", h.OwnerRequests.Mine)
		owner.GET("/", middleware.RequireSuperAdmin, h.OwnerRequests.List)
		owner.PUT("/:id/status", middleware.RequireSuperAdmin, middleware.Audit("owner_request.decide", logger), h.OwnerRequests.UpdateStatus)
	}
}
