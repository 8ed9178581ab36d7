package app

import (
	"context"

	"github.com/2140526141/sneaker/internal/domain"
)

// OrderGetter is the lookup the guard needs.
type OrderGetter interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// OwnershipGuard confirms a buyer owns an order before any mutation. A
// missing order and a foreign order are distinct outcomes
// (domain.ErrOrderNotFound vs domain.ErrNotOwner) so transports can answer
// 404 and 403 separately.
type OwnershipGuard struct {
	ledger OrderGetter
}

func NewOwnershipGuard(ledger OrderGetter) *OwnershipGuard {
	return &OwnershipGuard{ledger: ledger}
}

// Verify loads the order and checks the buyer. On success it returns the
// order so callers avoid a second lookup.
func (g *OwnershipGuard) Verify(ctx context.Context, buyerID, orderID string) (domain.Order, error) {
	order, err := g.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.BuyerID != buyerID {
		return domain.Order{}, domain.ErrNotOwner
	}
	return order, nil
}
