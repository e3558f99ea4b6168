package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOrderID  = errors.New("invalid order id")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	ErrUnknownProducts = errors.New("order references unknown products")
)
