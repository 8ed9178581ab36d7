package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/2140526141/sneaker/internal/domain"
	"github.com/2140526141/sneaker/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestOrder(buyerID, productID string, createdAt time.Time) domain.Order {
	orderID := uuid.NewString()
	line := domain.OrderLine{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: "Air Max",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("5.00"),
		CreatedAt:   createdAt,
	}
	return domain.Order{
		ID:        orderID,
		BuyerID:   buyerID,
		Lines:     []domain.OrderLine{line},
		Total:     decimal.RequireFromString("10.00"),
		Status:    domain.OrderStatusNew,
		PayStatus: domain.PayStatusWait,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderRepository_InsertAndGet(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	productID := testutil.InsertProduct(t, ctx, pool, "Air Max", decimal.RequireFromString("5.00"), 10)
	repo := NewOrderRepository(pool)

	order := newTestOrder("buyer-1", productID, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := repo.InsertOrder(ctx, order); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	got, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.BuyerID != "buyer-1" {
		t.Fatalf("expected buyer-1, got %s", got.BuyerID)
	}
	if !got.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", got.Total)
	}
	if got.Status != domain.OrderStatusNew || got.PayStatus != domain.PayStatusWait {
		t.Fatalf("unexpected statuses %s/%s", got.Status, got.PayStatus)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	if got.Lines[0].ProductID != productID || got.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected line %+v", got.Lines[0])
	}
	if !got.Lines[0].UnitPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected unit price 5.00, got %s", got.Lines[0].UnitPrice)
	}

	if err := repo.InsertOrder(ctx, order); err != domain.ErrOrderExists {
		t.Fatalf("expected ErrOrderExists on duplicate, got %v", err)
	}

	if _, err := repo.GetOrder(ctx, uuid.NewString()); err != domain.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

// A failed line insert must roll the header back with it.
func TestOrderRepository_InsertIsAtomic(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewOrderRepository(pool)

	// References a product that does not exist, so the line insert violates
	// the foreign key after the header went in.
	order := newTestOrder("buyer-1", uuid.NewString(), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := repo.InsertOrder(ctx, order); err == nil {
		t.Fatalf("expected insert to fail")
	}

	if _, err := repo.GetOrder(ctx, order.ID); err != domain.ErrOrderNotFound {
		t.Fatalf("expected header rolled back, got %v", err)
	}
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	productID := testutil.InsertProduct(t, ctx, pool, "Air Max", decimal.RequireFromString("5.00"), 10)
	repo := NewOrderRepository(pool)

	order := newTestOrder("buyer-1", productID, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := repo.InsertOrder(ctx, order); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusNew, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if !updated {
		t.Fatalf("expected status to change")
	}
	if got := testutil.OrderStatus(t, ctx, pool, order.ID); got != domain.OrderStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", got)
	}

	// Second CAS from NEW must miss.
	updated, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatusNew, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated {
		t.Fatalf("expected no-op on second transition")
	}

	updated, err = repo.UpdateStatus(ctx, uuid.NewString(), domain.OrderStatusNew, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated {
		t.Fatalf("expected no rows for missing order")
	}
}

func TestOrderRepository_ListByBuyer(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	productID := testutil.InsertProduct(t, ctx, pool, "Air Max", decimal.RequireFromString("5.00"), 100)
	repo := NewOrderRepository(pool)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		order := newTestOrder("buyer-1", productID, base.Add(time.Duration(i)*time.Minute))
		if err := repo.InsertOrder(ctx, order); err != nil {
			t.Fatalf("insert order %d: %v", i, err)
		}
		ids = append(ids, order.ID)
	}
	other := newTestOrder("buyer-2", productID, base)
	if err := repo.InsertOrder(ctx, other); err != nil {
		t.Fatalf("insert other buyer order: %v", err)
	}

	orders, err := repo.ListByBuyer(ctx, "buyer-1", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Newest first.
	if orders[0].ID != ids[2] || orders[1].ID != ids[1] {
		t.Fatalf("expected newest-first ordering")
	}

	rest, err := repo.ListByBuyer(ctx, "buyer-1", 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != ids[0] {
		t.Fatalf("expected the oldest order on page 2")
	}
}
