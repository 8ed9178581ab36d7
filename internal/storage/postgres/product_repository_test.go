package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/2140526141/sneaker/internal/domain"
	"github.com/2140526141/sneaker/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestProductRepository_DecrementStock(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewProductRepository(pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Air Max", decimal.RequireFromString("10.00"), 5)

	res, err := repo.DecrementStock(ctx, productID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !res.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected price snapshot 10.00, got %s", res.UnitPrice)
	}
	if res.ProductName != "Air Max" {
		t.Fatalf("expected name snapshot, got %q", res.ProductName)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}

	// Exactly the remaining stock is still allowed.
	if _, err := repo.DecrementStock(ctx, productID, 2); err != nil {
		t.Fatalf("decrement to zero: %v", err)
	}

	_, err = repo.DecrementStock(ctx, productID, 1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.ProductID != productID {
		t.Fatalf("expected InsufficientStockError for %s, got %v", productID, err)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 0 {
		t.Fatalf("expected stock still 0, got %d", got)
	}

	if _, err := repo.DecrementStock(ctx, "0b6ff6c9-9bad-4eb1-8a4a-99353b3f7a13", 1); err != domain.ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := repo.DecrementStock(ctx, "not-a-uuid", 1); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestProductRepository_IncrementStock(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewProductRepository(pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Jordan 1", decimal.RequireFromString("20.00"), 1)

	if err := repo.IncrementStock(ctx, productID, 4); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}

	if err := repo.IncrementStock(ctx, "0b6ff6c9-9bad-4eb1-8a4a-99353b3f7a13", 1); err != domain.ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// Concurrent conditional decrements on one row must never drive stock
// negative: the row lock serializes them.
func TestProductRepository_ConcurrentDecrement(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	const initialStock = 5
	const callers = 12

	repo := NewProductRepository(pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Dunk Low", decimal.RequireFromString("1.00"), initialStock)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.DecrementStock(ctx, productID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != initialStock {
		t.Fatalf("expected %d winners, got %d", initialStock, succeeded)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestProductRepository_GetProduct(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewProductRepository(pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Blazer Mid", decimal.RequireFromString("75.50"), 7)

	p, err := repo.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Name != "Blazer Mid" || p.Stock != 7 || !p.Price.Equal(decimal.RequireFromString("75.50")) {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := repo.GetProduct(ctx, "0b6ff6c9-9bad-4eb1-8a4a-99353b3f7a13"); err != domain.ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
