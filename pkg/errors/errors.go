package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the common failure classes. Services wrap these so
// callers can branch with errors.Is without depending on concrete types.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInventory         = errors.New("inventory constraint violated")
	ErrLedger            = errors.New("ledger operation failed")
	ErrInternal          = errors.New("internal error")
)

// AppError is a structured application error with a stable machine-readable
// code and an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error for malformed or missing input.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error for a caller acting outside their role.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error, used for duplicate resources and lost
// optimistic-concurrency races.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// AlreadyExists creates a 409 error for a unique-constraint violation.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidTransition creates a 409 error naming both order statuses.
func InvalidTransition(current, requested string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition order from %q to %q", current, requested),
		Status:  http.StatusConflict,
		Err:     ErrInvalidTransition,
	}
}

// MissingTrackingNumber creates a 400 error for a ship request without a
// tracking number.
func MissingTrackingNumber() *AppError {
	return &AppError{
		Code:    "MISSING_TRACKING_NUMBER",
		Message: "a tracking number is required to mark an order as shipped",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InsufficientQuantity creates a 409 error for a reservation exceeding stock.
func InsufficientQuantity(productID string, requested, available int64) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_QUANTITY",
		Message: fmt.Sprintf("product %s has %d units available, %d requested", productID, available, requested),
		Status:  http.StatusConflict,
		Err:     ErrInventory,
	}
}

// ProductUnavailable creates a 409 error for a listing that is not active.
func ProductUnavailable(productID, status string) *AppError {
	return &AppError{
		Code:    "PRODUCT_UNAVAILABLE",
		Message: fmt.Sprintf("product %s is not available for purchase (status %s)", productID, status),
		Status:  http.StatusConflict,
		Err:     ErrInventory,
	}
}

// SelfPurchaseDenied creates a 422 error for a buyer purchasing their own listing.
func SelfPurchaseDenied() *AppError {
	return &AppError{
		Code:    "SELF_PURCHASE_DENIED",
		Message: "a seller cannot purchase their own listing",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInventory,
	}
}

// LedgerUnavailable creates a 502 error for an unreachable ledger gateway.
func LedgerUnavailable(message string) *AppError {
	return &AppError{
		Code:    "LEDGER_UNAVAILABLE",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     ErrLedger,
	}
}

// LedgerRejected creates a 422 error for an escrow operation the ledger refused.
func LedgerRejected(message string) *AppError {
	return &AppError{
		Code:    "LEDGER_REJECTED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrLedger,
	}
}

// LedgerTimeout creates a 504 error for a ledger call that exceeded its deadline.
// The outcome of the underlying operation is unknown to the caller.
func LedgerTimeout(message string) *AppError {
	return &AppError{
		Code:    "LEDGER_TIMEOUT",
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     ErrLedger,
	}
}

// Internal creates a 500 error that hides the underlying cause from clients.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInventory):
		return http.StatusConflict
	case errors.Is(err, ErrLedger):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
