package app

import (
	"context"

	"github.com/2140526141/sneaker/internal/domain"
)

// ProductRepository is the catalog surface the inventory service needs. The
// conditional decrement and the increment must each be a single atomic step
// against the backing store; the service never decides a decrement from a
// previously read stock value.
type ProductRepository interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	// DecrementStock subtracts qty if and only if the current stock is at
	// least qty, returning the product's price and name read in the same
	// step. Returns domain.ErrInsufficientStock (via InsufficientStockError)
	// when stock is short and domain.ErrProductNotFound when the product
	// does not exist.
	DecrementStock(ctx context.Context, productID string, qty int) (domain.Reservation, error)
	// IncrementStock adds qty back. Fails only when the product is gone.
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// InventoryService reserves and releases product stock. Reserve and Release
// for one product are totally ordered with respect to each other; operations
// on different products do not contend.
type InventoryService struct {
	products ProductRepository
}

func NewInventoryService(products ProductRepository) *InventoryService {
	return &InventoryService{products: products}
}

// Reserve atomically takes qty units of a product and returns the price
// snapshot to bill for them. A request for exactly the remaining stock
// succeeds; one unit more fails without side effects.
func (s *InventoryService) Reserve(ctx context.Context, productID string, qty int) (domain.Reservation, error) {
	if qty <= 0 {
		return domain.Reservation{}, domain.ErrInvalidQuantity
	}
	return s.products.DecrementStock(ctx, productID, qty)
}

// Release returns previously reserved units to the product's stock.
func (s *InventoryService) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.products.IncrementStock(ctx, productID, qty)
}

// Product reads current price and stock. This is an estimate path only;
// reservations never act on a value read here.
func (s *InventoryService) Product(ctx context.Context, productID string) (domain.Product, error) {
	return s.products.GetProduct(ctx, productID)
}
