package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}

	// ErrNotAuthenticated is returned when checkout is attempted without an identity
	ErrNotAuthenticated = &AppError{Code: http.StatusUnauthorized, Message: "Sign in to complete your purchase"}
	// ErrEmptyCart is returned when checkout is attempted with no cart lines
	ErrEmptyCart = &AppError{Code: http.StatusUnprocessableEntity, Message: "Cart is empty"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible.
// Domain errors from the cart and checkout are translated to their HTTP form.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return &AppError{
			Code:    http.StatusConflict,
			Message: stockErr.Error(),
			Errors:  []FieldError{{Field: "quantity", Message: stockErr.Error()}},
		}
	}

	var fieldErr *FieldValidationError
	if errors.As(err, &fieldErr) {
		return NewValidationError([]FieldError{{Field: fieldErr.Field, Message: fieldErr.Reason()}})
	}

	var checkoutErr *CheckoutFailedError
	if errors.As(err, &checkoutErr) {
		return &AppError{
			Code:    http.StatusBadGateway,
			Message: "Checkout failed, please retry",
		}
	}

	// raw driver and network errors stay in the log
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: ErrInternalServer.Message,
	}
}
