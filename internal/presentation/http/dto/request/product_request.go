package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request. Price accepts a
// JSON number or a decimal string.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=255"`
	Code        string          `json:"code" binding:"omitempty,max=100"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	ImageURL    *string         `json:"image_url" binding:"omitempty,max=255"`
	IsActive    *bool           `json:"is_active"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Code        *string          `json:"code" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=255"`
	IsActive    *bool            `json:"is_active"`
}

// UpdateStockRequest sets a product's stock count
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// ProductFilterRequest represents staff product list filters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	LowStock   bool   `form:"low_stock"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
