package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidID         = errors.New("invalid id")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrNotOwner          = errors.New("order belongs to another buyer")
	ErrOrderCompleted    = errors.New("completed order cannot be cancelled")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError identifies which product ran short. It matches
// ErrInsufficientStock under errors.Is so callers can test the kind without
// caring about the product.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// PersistenceError wraps a ledger write failure after all reservations for
// the order were compensated.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialReleaseError reports that an order was cancelled but one or more
// line releases failed; stock for the listed products was not restored and
// needs reconciliation.
type PartialReleaseError struct {
	OrderID    string
	ProductIDs []string
}

func (e *PartialReleaseError) Error() string {
	return fmt.Sprintf("order %s cancelled but release failed for products: %s",
		e.OrderID, strings.Join(e.ProductIDs, ", "))
}
