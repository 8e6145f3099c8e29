package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-api/internal/config"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/internal/presentation/http/handler"
	"github.com/sangkips/storefront-api/internal/presentation/http/middleware"
	"github.com/sangkips/storefront-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Dashboard *handler.DashboardHandler
	Product   *handler.ProductHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
}

// NewRateLimiter builds the per-client limiter from configuration. The caller
// owns it and stops it on shutdown.
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.ClientRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RequestsPerSecond > 0 {
		rlCfg.RequestsPerSecond = cfg.RequestsPerSecond
	}
	if cfg.Burst > 0 {
		rlCfg.BurstSize = cfg.Burst
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	return middleware.NewClientRateLimiter(rlCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.RateLimiter != nil {
			body["rate_limiter"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, body)
	})

	v1 := router.Group("/api/v1")
	// Identity is optional on storefront routes so anonymous carts work;
	// it must run before the limiter so signed-in callers get their own bucket
	v1.Use(middleware.OptionalAuthMiddleware(deps.JWTManager))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		v1.GET("/products/:id", h.Product.GetByID)

		registerCartRoutes(v1, h)
		registerCheckoutRoutes(v1, h, deps)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		registerOrderRoutes(protected, h)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole("admin", "staff"))
		registerAdminRoutes(admin, h)
	}

	return router
}

func registerCartRoutes(v1 *gin.RouterGroup, h *Handlers) {
	cart := v1.Group("/cart")
	cart.Use(middleware.CartSession())
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.UpdateItem)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		cart.DELETE("", h.Cart.Clear)
	}
}

func registerCheckoutRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	v1.POST("/checkout",
		middleware.CartSession(),
		middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
		h.Checkout.Checkout,
	)
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers) {
	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.ListMine)
		orders.GET("/:id", h.Order.GetMine)
	}
}

func registerAdminRoutes(admin *gin.RouterGroup, h *Handlers) {
	admin.GET("/dashboard", h.Dashboard.GetStats)

	orders := admin.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.GetByID)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
	}

	products := admin.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.PATCH("/:id/stock", h.Product.UpdateStock)
		products.DELETE("/:id", h.Product.Delete)
	}
}
