package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/pkg/pagination"
)

// OrderRepository defines the interface for order header operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// GetWithLines loads an order with its lines and each line's product
	GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// ListByCustomer returns a customer's orders newest first, lines preloaded
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Order, error)
	Count(ctx context.Context, status *enum.OrderStatus) (int64, error)
	// UpdateStatus moves the order from one status to another. It returns
	// ErrStatusChanged when the order is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus) error
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// OrderLineRepository defines the interface for order line operations
type OrderLineRepository interface {
	CreateBatch(ctx context.Context, lines []entity.OrderLine) error
}
