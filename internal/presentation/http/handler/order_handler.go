package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-api/internal/application/service"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-api/pkg/pagination"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListMine lists the signed-in customer's orders, newest first
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orders, err := h.orderService.ListCustomerOrders(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Orders retrieved successfully", orders)
}

// GetMine returns one of the signed-in customer's orders
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetCustomerOrder(c.Request.Context(), *userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// List handles the staff order listing
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
	}

	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, "Invalid order status")
			return
		}
		params.Status = &status
	}

	if filter.StartDate != "" {
		if startDate, err := time.Parse("2006-01-02", filter.StartDate); err == nil {
			params.StartDate = &startDate
		}
	}

	if filter.EndDate != "" {
		if endDate, err := time.Parse("2006-01-02", filter.EndDate); err == nil {
			endOfDay := endDate.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &endOfDay
		}
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// GetByID handles getting any order by ID
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// UpdateStatus handles moving an order to a new status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status, err := enum.ParseOrderStatus(req.Status)
	if err != nil {
		response.BadRequest(c, "Invalid order status")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated successfully", order)
}
