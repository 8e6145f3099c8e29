package request

// AddCartItemRequest adds a product to the cart. Quantity defaults to 1.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest sets a line's quantity. Zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}
