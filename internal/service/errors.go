package service

import "errors"

// Validation errors. Always recoverable: the operation is rejected and
// no state changes.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientStock    = errors.New("no stock available")
	ErrQuantityExceedsStock = errors.New("quantity exceeds available stock")
	ErrInsufficientPayment  = errors.New("tendered amount is below the total")
	ErrCheckoutInProgress   = errors.New("a checkout is already committing")
	ErrDuplicateCheckout    = errors.New("checkout already submitted")
	ErrUnknownProduct       = errors.New("product not in catalog")
	ErrInvalidProduct       = errors.New("invalid product")
)
