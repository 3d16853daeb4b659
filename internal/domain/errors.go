package domain

import "errors"

// Domain rule violations. Callers match these with errors.Is and decide
// the user-facing response; none of them is retryable.
var (
	ErrQuantityOutOfRange = errors.New("quantity must be between 1 and 999")
	ErrQuantityOverCap    = errors.New("quantity exceeds the per-item cap of 999")
	ErrCartItemNotFound   = errors.New("product not in cart")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAmountMismatch     = errors.New("callback amount does not match payment amount")
)

// ErrProductGone indicates an order-referenced product vanished from the
// catalog. This is a consistency failure, not a recoverable domain error.
var ErrProductGone = errors.New("product referenced by cart no longer exists")
