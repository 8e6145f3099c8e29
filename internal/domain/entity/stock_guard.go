package entity

import "github.com/sangkips/storefront-api/pkg/apperror"

// CheckStock allows requested only when it does not exceed known stock.
// It never clamps and never looks past the snapshot it is given.
func CheckStock(requested, known int) error {
	if requested > known {
		if known < 0 {
			known = 0
		}
		return &apperror.InsufficientStockError{Available: known}
	}
	return nil
}
