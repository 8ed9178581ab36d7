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

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// InsertOrder writes the header and every line in one transaction; either
// the whole order becomes durable or none of it does.
func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const header = `
INSERT INTO orders (id, buyer_id, total, status, pay_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err := r.exec(txCtx, header,
			order.ID,
			order.BuyerID,
			order.Total.String(),
			order.Status,
			order.PayStatus,
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrOrderExists
			}
			return fmt.Errorf("insert order: %w", err)
		}

		const line = `
INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, unit_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		for _, l := range order.Lines {
			_, err := r.exec(txCtx, line,
				l.ID,
				l.OrderID,
				l.ProductID,
				l.ProductName,
				l.Quantity,
				l.UnitPrice.String(),
				l.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		return nil
	})
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	const header = `
SELECT id, buyer_id, total::text, status, pay_status, created_at, updated_at
FROM orders
WHERE id = $1`

	var o domain.Order
	var total string
	err := r.queryRow(ctx, header, orderID).
		Scan(&o.ID, &o.BuyerID, &total, &o.Status, &o.PayStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("parse total for order %s: %w", orderID, err)
	}

	if o.Lines, err = r.linesForOrder(ctx, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// UpdateStatus is a compare-and-set on the order's status. Zero rows means
// the order is missing or no longer in the from status; callers re-read to
// tell which.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	const stmt = `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, orderID, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByBuyer returns order headers only, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, offset, limit int) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, total::text, status, pay_status, created_at, updated_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC, id DESC
OFFSET $2 LIMIT $3`

	rows, err := r.query(ctx, query, buyerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var total string
		if err := rows.Scan(&o.ID, &o.BuyerID, &total, &o.Status, &o.PayStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total for order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) linesForOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const query = `
SELECT id, order_id, product_id, product_name, quantity, unit_price::text, created_at
FROM order_lines
WHERE order_id = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		var price string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &price, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price for line %s: %w", l.ID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return lines, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
