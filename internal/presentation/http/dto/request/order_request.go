package request

// CheckoutRequest is the checkout form. Fields are validated by the checkout
// service so missing ones come back as field errors.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
	TaxID           string `json:"tax_id"`
	Note            string `json:"note" binding:"max=1000"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderFilterRequest represents staff order list filters
type OrderFilterRequest struct {
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
