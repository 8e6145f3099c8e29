package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/application/service"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/response"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) store(c *gin.Context) (*service.CartStore, bool) {
	store, err := h.cartService.Store(c.Request.Context(), GetCartSession(c))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return store, true
}

// Get returns the session's cart
func (h *CartHandler) Get(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.OK(c, "Cart retrieved successfully", store.Snapshot())
}

// AddItem adds a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	cart, err := h.cartService.AddProduct(c.Request.Context(), GetCartSession(c), productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", cart)
}

// UpdateItem sets the quantity of a cart line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}

	cart, err := store.UpdateQuantity(c.Request.Context(), productID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", cart)
}

// RemoveItem removes a product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}

	cart, err := store.RemoveItem(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart cleared", store.Snapshot())
}
