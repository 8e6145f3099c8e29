package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/application/service"
	"github.com/sangkips/storefront-api/internal/config"
	"github.com/sangkips/storefront-api/internal/infrastructure/cache"
	"github.com/sangkips/storefront-api/internal/infrastructure/database"
	"github.com/sangkips/storefront-api/internal/infrastructure/events"
	"github.com/sangkips/storefront-api/internal/infrastructure/repository"
	"github.com/sangkips/storefront-api/internal/presentation/http/handler"
	"github.com/sangkips/storefront-api/internal/presentation/http/routes"
	"github.com/sangkips/storefront-api/pkg/utils"
)

const (
	cartIdleTimeout    = 30 * time.Minute
	housekeepingPeriod = 5 * time.Minute
)

func main() {
	// Load configuration
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.App.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.App.Seed {
		if err := database.SeedCatalog(ctx, db); err != nil {
			slog.Warn("failed to seed catalog", "error", err)
		}
	}

	mirror, err := cache.NewCartMirror(&cfg.Cart)
	if err != nil {
		slog.Error("failed to open cart mirror", "driver", cfg.Cart.MirrorDriver, "error", err)
		os.Exit(1)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderLineRepo := repository.NewOrderLineRepository(db)
	salesRepo := repository.NewSalesRecordRepository(db)
	salesLineRepo := repository.NewSalesLineRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	publisher, closePublisher := events.NewOrderEventPublisher(&cfg.Events)

	var cashierID uuid.UUID
	if cfg.Checkout.CashierID != "" {
		if cashierID, err = uuid.Parse(cfg.Checkout.CashierID); err != nil {
			slog.Error("invalid CHECKOUT_CASHIER_ID", "value", cfg.Checkout.CashierID, "error", err)
			os.Exit(1)
		}
	}

	// Initialize services
	cartService := service.NewCartService(mirror, productRepo, cartIdleTimeout)
	cartService.StartCleanup(ctx, housekeepingPeriod)

	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Identity:       service.ContextIdentityProvider{},
		Orders:         orderRepo,
		OrderLines:     orderLineRepo,
		SalesRecords:   salesRepo,
		SalesLines:     salesLineRepo,
		Profiles:       profileRepo,
		Events:         publisher,
		CashierID:      cashierID,
		ProfileTimeout: cfg.Checkout.ProfileUpdateTimeout,
	})
	orderService := service.NewOrderService(orderRepo)
	productService := service.NewProductService(productRepo)
	dashboardService := service.NewDashboardService(orderRepo, productRepo, salesRepo)

	go purgeIdempotencyKeys(ctx, idempotencyRepo.DeleteExpired)

	// Initialize handlers
	handlers := &routes.Handlers{
		Cart:      handler.NewCartHandler(cartService),
		Checkout:  handler.NewCheckoutHandler(cartService, checkoutService),
		Order:     handler.NewOrderHandler(orderService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Product:   handler.NewProductHandler(productService),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "service", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// let in-flight profile updates and order events finish
	checkoutService.Wait()

	if err := closePublisher(); err != nil {
		slog.Warn("failed to close event publisher", "error", err)
	}
	if err := mirror.Close(); err != nil {
		slog.Warn("failed to close cart mirror", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func purgeIdempotencyKeys(ctx context.Context, purge func(context.Context) error) {
	ticker := time.NewTicker(housekeepingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := purge(ctx); err != nil {
				slog.Warn("failed to purge expired idempotency keys", "error", err)
			}
		}
	}
}
