package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"github.com/sangkips/storefront-api/pkg/pagination"
)

// OrderService handles order reads and staff status changes
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// ListCustomerOrders returns the customer's orders newest first with their lines
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// GetCustomerOrder returns one of the customer's orders
func (s *OrderService) GetCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// GetOrder returns any order with its lines
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns a page of orders across all customers
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, p), nil
}

// UpdateStatus moves an order along the status machine
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enum.OrderStatus) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(to) {
		return nil, apperror.NewBadRequestError(
			fmt.Sprintf("Cannot change order status from %s to %s", order.Status, to))
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, to); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperror.NewConflictError("Order status was changed by another request, reload and retry")
		}
		return nil, err
	}

	slog.Info("order status changed", "order_id", orderID, "from", order.Status, "to", to)
	order.Status = to
	return order, nil
}
