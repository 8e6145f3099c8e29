package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
	return classifyWriteError(entity.Order{}.TableName(), err)
}

// withLines preloads lines and the products they reference. Soft-deleted
// products still provide their display fields.
func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines").Preload("Lines.Product", func(tx *gorm.DB) *gorm.DB {
		return tx.Unscoped()
	})
}

func (r *orderRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Scopes(withLines).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Scopes(withLines).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count(ctx context.Context, status *enum.OrderStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Order{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrStatusChanged
	}
	return nil
}

type orderLineRepository struct {
	db *gorm.DB
}

// NewOrderLineRepository creates a new order line repository
func NewOrderLineRepository(db *gorm.DB) domainRepo.OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) CreateBatch(ctx context.Context, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
	return classifyWriteError(entity.OrderLine{}.TableName(), err)
}
