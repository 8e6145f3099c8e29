package apperror

import "fmt"

// InsufficientStockError is returned when a cart quantity would exceed the
// stock known for the product.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %d available", e.Available)
}

// FieldValidationError names a checkout form field that failed validation
type FieldValidationError struct {
	Field   string
	Message string
}

func (e *FieldValidationError) Error() string {
	return e.Field + ": " + e.Reason()
}

// Reason returns the human readable part of the error
func (e *FieldValidationError) Reason() string {
	if e.Message == "" {
		return "is required"
	}
	return e.Message
}

// CheckoutStage identifies the remote write that failed during checkout
type CheckoutStage string

const (
	StageOrder       CheckoutStage = "order"
	StageOrderLines  CheckoutStage = "order_lines"
	StageSalesRecord CheckoutStage = "sales_record"
	StageSalesLines  CheckoutStage = "sales_lines"
)

// CheckoutFailedError wraps the cause of a failed checkout write with its stage.
type CheckoutFailedError struct {
	Stage CheckoutStage
	Cause error
}

func (e *CheckoutFailedError) Error() string {
	return fmt.Sprintf("checkout failed at %s: %v", e.Stage, e.Cause)
}

func (e *CheckoutFailedError) Unwrap() error {
	return e.Cause
}

// NewCheckoutFailedError tags cause with the stage that produced it
func NewCheckoutFailedError(stage CheckoutStage, cause error) *CheckoutFailedError {
	return &CheckoutFailedError{Stage: stage, Cause: cause}
}
