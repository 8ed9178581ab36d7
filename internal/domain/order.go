package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type PayStatus string

const (
	PayStatusWait PayStatus = "WAIT"
	PayStatusPaid PayStatus = "PAID"
)

// OrderLine is one product-quantity entry within an order. Name and unit
// price are snapshots taken when the line's stock was reserved; they never
// track later catalog changes.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

// Subtotal is quantity times the snapshot unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a buyer's purchase: a header plus its immutable lines. Total is
// computed once at creation from line snapshots.
type Order struct {
	ID        string
	BuyerID   string
	Lines     []OrderLine
	Total     decimal.Decimal
	Status    OrderStatus
	PayStatus PayStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
