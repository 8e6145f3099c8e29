package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sangkips/storefront-api/internal/config"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	slog.Info("connected to postgres", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// Models lists every persisted entity, in dependency order
func Models() []interface{} {
	return []interface{}{
		&entity.Product{},
		&entity.Profile{},
		&entity.Order{},
		&entity.OrderLine{},
		&entity.SalesRecord{},
		&entity.SalesLine{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	slog.Info("running database migrations")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations completed")
	return nil
}

// SeedCatalog inserts a small demo catalog when the products table is empty
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := []entity.Product{
		{Name: "Ceramic Mug", Code: "PROD-MUG-001", Price: decimal.RequireFromString("25.00"), Stock: 10, IsActive: true},
		{Name: "Cotton Tote Bag", Code: "PROD-TOTE-001", Price: decimal.RequireFromString("12.50"), Stock: 40, IsActive: true},
		{Name: "Notebook A5", Code: "PROD-NOTE-001", Price: decimal.RequireFromString("4.99"), Stock: 6, IsActive: true},
		{Name: "Desk Lamp", Code: "PROD-LAMP-001", Price: decimal.RequireFromString("39.90"), Stock: 2, IsActive: true},
	}
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	slog.Info("seeded demo catalog", "products", len(products))
	return nil
}
