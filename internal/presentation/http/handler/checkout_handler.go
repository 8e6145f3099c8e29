package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-api/internal/application/service"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/response"
)

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(cartService *service.CartService, checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{cartService: cartService, checkoutService: checkoutService}
}

// Checkout places an order for the session's cart
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	store, err := h.cartService.Store(c.Request.Context(), GetCartSession(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), store, service.CheckoutForm{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TaxID:           req.TaxID,
		Note:            req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order placed successfully", order)
}
