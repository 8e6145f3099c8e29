package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	// Delete soft-deletes the product; order lines keep its display fields
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	Count(ctx context.Context) (int64, error)
	// CountLowStock counts active products with stock below threshold
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	// ListLowStock returns active products below threshold, lowest stock first
	ListLowStock(ctx context.Context, threshold, limit int) ([]entity.Product, error)
}

// ProductFilterParams contains filtering parameters for staff product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	LowStock   bool
	ActiveOnly bool
}
