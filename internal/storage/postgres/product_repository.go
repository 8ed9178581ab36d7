package postgres

import (
	"context"
	"fmt"

	"github.com/2140526141/sneaker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, price::text, stock, created_at FROM products WHERE id = $1`

	var p domain.Product
	var price string
	err := r.queryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("parse price for product %s: %w", productID, err)
	}
	return p, nil
}

// DecrementStock is the reserve step: the stock check and the decrement are
// one UPDATE, so concurrent reservations for the same product serialize on
// the row and never both succeed on the last units. The price and name come
// back from the same statement as the snapshot to bill.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, qty int) (domain.Reservation, error) {
	const stmt = `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
RETURNING name, price::text`

	var name, price string
	err := r.queryRow(ctx, stmt, productID, qty).Scan(&name, &price)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, r.classifyMiss(ctx, productID)
		}
		return domain.Reservation{}, fmt.Errorf("decrement stock: %w", err)
	}

	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("parse price for product %s: %w", productID, err)
	}
	return domain.Reservation{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   unitPrice,
	}, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	const stmt = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, qty)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// classifyMiss distinguishes "no such product" from "not enough stock" after
// a zero-row conditional decrement.
func (r *ProductRepository) classifyMiss(ctx context.Context, productID string) error {
	var exists bool
	err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product %s: %w", productID, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return &domain.InsufficientStockError{ProductID: productID}
}

func (r *ProductRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProductRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
