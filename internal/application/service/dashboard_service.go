package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	recentOrdersLimit    = 5
	lowStockProductLimit = 10
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	salesRepo   repository.SalesRecordRepository
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	salesRepo repository.SalesRecordRepository,
) *DashboardService {
	return &DashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		salesRepo:   salesRepo,
		now:         time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalProducts    int64            `json:"total_products"`
	TotalOrders      int64            `json:"total_orders"`
	TotalRevenue     decimal.Decimal  `json:"-"`
	PendingOrders    int64            `json:"pending_orders"`
	LowStockCount    int64            `json:"low_stock_count"`
	TodaySalesCount  int64            `json:"today_sales_count"`
	TodaySalesAmount decimal.Decimal  `json:"-"`
	RecentOrders     []entity.Order   `json:"recent_orders"`
	LowStockProducts []entity.Product `json:"low_stock_products"`
}

// MarshalJSON renders money with two decimals
func (d DashboardStats) MarshalJSON() ([]byte, error) {
	type Alias DashboardStats
	return json.Marshal(&struct {
		Alias
		TotalRevenue     string `json:"total_revenue"`
		TodaySalesAmount string `json:"today_sales_amount"`
	}{
		Alias:            Alias(d),
		TotalRevenue:     entity.FormatAmount(d.TotalRevenue),
		TodaySalesAmount: entity.FormatAmount(d.TodaySalesAmount),
	})
}

// GetStats returns dashboard statistics
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.Count(ctx, nil); err != nil {
		return nil, err
	}

	pending := enum.OrderStatusPending
	if stats.PendingOrders, err = s.orderRepo.Count(ctx, &pending); err != nil {
		return nil, err
	}

	if stats.LowStockCount, err = s.productRepo.CountLowStock(ctx, entity.LowStockThreshold); err != nil {
		return nil, err
	}

	// Revenue comes from the sales ledger, not order headers
	if _, stats.TotalRevenue, err = s.salesRepo.Summarize(ctx, time.Time{}); err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.TodaySalesCount, stats.TodaySalesAmount, err = s.salesRepo.Summarize(ctx, startOfDay); err != nil {
		return nil, err
	}

	if stats.RecentOrders, err = s.orderRepo.ListRecent(ctx, recentOrdersLimit); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.productRepo.ListLowStock(ctx, entity.LowStockThreshold, lowStockProductLimit); err != nil {
		return nil, err
	}

	if stats.RecentOrders == nil {
		stats.RecentOrders = []entity.Order{}
	}
	if stats.LowStockProducts == nil {
		stats.LowStockProducts = []entity.Product{}
	}
	return stats, nil
}
