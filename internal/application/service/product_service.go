package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"github.com/sangkips/storefront-api/pkg/pagination"
	"github.com/sangkips/storefront-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// ProductService handles storefront product lookups and staff inventory
// management.
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// GetProduct returns an active product
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByID returns a product whether or not it is active
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts returns a page of products for staff
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, p), nil
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name        string
	Code        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	ImageURL    *string
	IsActive    *bool
}

// CreateProduct adds a product to the catalog. A code is generated when none
// is given.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &apperror.FieldValidationError{Field: "name"}
	}
	if err := validatePriceAndStock(&input.Price, &input.Stock); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateReferenceNo("PROD")
	}
	if err := s.ensureCodeFree(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        name,
		Code:        code,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	slog.Info("product created", "product_id", product.ID, "code", product.Code)
	return product, nil
}

// UpdateProductInput represents the update product input. Nil fields are left
// as they are.
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Code        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	IsActive    *bool
}

// UpdateProduct changes catalog fields of a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, &apperror.FieldValidationError{Field: "name"}
		}
		product.Name = name
	}
	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			return nil, &apperror.FieldValidationError{Field: "code"}
		}
		if code != product.Code {
			if err := s.ensureCodeFree(ctx, code, product.ID); err != nil {
				return nil, err
			}
			product.Code = code
		}
	}
	if err := validatePriceAndStock(input.Price, input.Stock); err != nil {
		return nil, err
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStock records a new stock count. Carts pick it up on their next add.
func (s *ProductService) SetStock(ctx context.Context, id uuid.UUID, stock int) (*entity.Product, error) {
	if err := validatePriceAndStock(nil, &stock); err != nil {
		return nil, err
	}
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.UpdateStock(ctx, id, stock); err != nil {
		return nil, err
	}

	slog.Info("product stock changed", "product_id", id, "from", product.Stock, "to", stock)
	product.Stock = stock
	return product, nil
}

// DeleteProduct removes a product from the catalog. Past orders still show it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Product code already exists")
	}
	return nil
}

func validatePriceAndStock(price *decimal.Decimal, stock *int) error {
	if price != nil && price.IsNegative() {
		return &apperror.FieldValidationError{Field: "price", Message: "must not be negative"}
	}
	if stock != nil && *stock < 0 {
		return &apperror.FieldValidationError{Field: "stock", Message: "must not be negative"}
	}
	return nil
}
