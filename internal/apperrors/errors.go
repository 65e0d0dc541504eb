// internal/apperrors/errors.go
package apperrors

import "errors"

// Domain failure taxonomy. Services return these (possibly wrapped with
// fmt.Errorf and %w); handlers translate them to HTTP responses. Anything not
// in this list is treated as an internal error.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrInsufficientCredit  = errors.New("no credit left")
	ErrInsufficientStock   = errors.New("not enough stock")
	ErrInvalidState        = errors.New("invalid state for this operation")
	ErrNotReturnable       = errors.New("asset is not returnable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// Code returns the stable machine-readable code for a domain error, or
// "INTERNAL_ERROR" when err is not part of the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrAlreadyProcessed):
		return "ALREADY_PROCESSED"
	case errors.Is(err, ErrInsufficientCredit):
		return "INSUFFICIENT_CREDIT"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrNotReturnable):
		return "NOT_RETURNABLE"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrPaymentNotCompleted):
		return "PAYMENT_NOT_COMPLETED"
	default:
		return "INTERNAL_ERROR"
	}
}
