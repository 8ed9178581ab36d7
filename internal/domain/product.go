package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry with its live price and available stock. Stock
// is mutated only through reservation and release; it never goes negative.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
}

// Reservation is the outcome of an atomic stock decrement: the quantity
// taken plus the price and name read in the same atomic step.
type Reservation struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}
