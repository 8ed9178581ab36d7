package app

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/2140526141/sneaker/internal/clock"
	"github.com/2140526141/sneaker/internal/domain"
	"github.com/2140526141/sneaker/internal/events"
	"github.com/2140526141/sneaker/internal/metrics"
	"github.com/shopspring/decimal"
)

// OrderRepository is the ledger surface the order workflows need. InsertOrder
// persists the header and all lines as one atomic unit.
type OrderRepository interface {
	InsertOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	// UpdateStatus moves the order from one status to another only if it is
	// still in the from status, reporting whether a row changed.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error)
	ListByBuyer(ctx context.Context, buyerID string, offset, limit int) ([]domain.Order, error)
}

// Inventory is the reservation surface the order workflows need.
type Inventory interface {
	Reserve(ctx context.Context, productID string, qty int) (domain.Reservation, error)
	Release(ctx context.Context, productID string, qty int) error
}

// OrderService orchestrates order creation and cancellation against the
// inventory and the ledger. Every collaborator is passed at construction.
type OrderService struct {
	ledger    OrderRepository
	inventory Inventory
	guard     *OwnershipGuard
	clock     clock.Clock
	publisher events.Publisher
	metrics   *metrics.OrderMetrics
	logger    *log.Logger

	maxPageSize int
}

const defaultMaxPageSize = 100

func NewOrderService(ledger OrderRepository, inventory Inventory, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		ledger:      ledger,
		inventory:   inventory,
		guard:       NewOwnershipGuard(ledger),
		clock:       clk,
		publisher:   events.NopPublisher{},
		logger:      log.Default(),
		maxPageSize: defaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithPublisher sets the destination for order lifecycle events.
func WithPublisher(p events.Publisher) OrderServiceOption {
	return func(s *OrderService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithOrderMetrics enables counting of order outcomes.
func WithOrderMetrics(m *metrics.OrderMetrics) OrderServiceOption {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) OrderServiceOption {
	return func(s *OrderService) {
		if l != nil {
			s.logger = l
		}
	}
}

type OrderLineInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	BuyerID string
	Lines   []OrderLineInput
}

// CreateOrder reserves stock for every requested line, computes the total
// from the price snapshots returned by the reservations, and persists the
// order atomically. If any reservation or the ledger write fails, every
// reservation already taken for this order is released before the error is
// returned; no partial order is ever left reserved.
//
// Lines are reserved in ascending product-id order so that concurrent orders
// touching the same products acquire them in one global order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if len(in.Lines) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for _, line := range in.Lines {
		if line.ProductID == "" {
			return domain.Order{}, domain.ErrInvalidID
		}
		if line.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidQuantity
		}
	}

	requested := mergeLines(in.Lines)

	reserved := make([]domain.Reservation, 0, len(requested))
	for _, line := range requested {
		res, err := s.inventory.Reserve(ctx, line.ProductID, line.Quantity)
		if err != nil {
			s.releaseAll(ctx, reserved)
			if s.metrics != nil && isInsufficientStock(err) {
				s.metrics.InsufficientStock()
			}
			return domain.Order{}, err
		}
		reserved = append(reserved, res)
	}

	now := s.clock.Now()
	orderID := newID()

	total := decimal.Zero
	lines := make([]domain.OrderLine, 0, len(reserved))
	for _, res := range reserved {
		line := domain.OrderLine{
			ID:          newID(),
			OrderID:     orderID,
			ProductID:   res.ProductID,
			ProductName: res.ProductName,
			Quantity:    res.Quantity,
			UnitPrice:   res.UnitPrice,
			CreatedAt:   now,
		}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}

	order := domain.Order{
		ID:        orderID,
		BuyerID:   in.BuyerID,
		Lines:     lines,
		Total:     total,
		Status:    domain.OrderStatusNew,
		PayStatus: domain.PayStatusWait,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.ledger.InsertOrder(ctx, order); err != nil {
		s.releaseAll(ctx, reserved)
		return domain.Order{}, &domain.PersistenceError{Err: err}
	}

	if s.metrics != nil {
		s.metrics.OrderCreated()
	}
	s.publish(ctx, events.OrderCreated(order.ID, order.BuyerID, order.Total.String(), now))

	return order, nil
}

// CancelOrder moves a NEW order to CANCELLED and returns each line's
// quantity to its product's stock. Cancelling an already cancelled order is
// a no-op that returns the order unchanged; a completed order cannot be
// cancelled. Releases happen after the status change commits, so a release
// failure leaves the order CANCELLED and is surfaced as a
// PartialReleaseError for out-of-band reconciliation.
func (s *OrderService) CancelOrder(ctx context.Context, buyerID, orderID string) (domain.Order, error) {
	order, err := s.guard.Verify(ctx, buyerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	switch order.Status {
	case domain.OrderStatusCancelled:
		return order, nil
	case domain.OrderStatusCompleted:
		return domain.Order{}, domain.ErrOrderCompleted
	}

	now := s.clock.Now()

	updated, err := s.ledger.UpdateStatus(ctx, orderID, domain.OrderStatusNew, domain.OrderStatusCancelled)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		// Lost a race with a concurrent cancel or fulfillment; the re-read
		// decides which. A concurrent cancel already did the releases.
		current, err := s.ledger.GetOrder(ctx, orderID)
		if err != nil {
			return domain.Order{}, err
		}
		if current.Status == domain.OrderStatusCancelled {
			return current, nil
		}
		return domain.Order{}, domain.ErrOrderCompleted
	}

	var failed []string
	for _, line := range order.Lines {
		if err := s.inventory.Release(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.Printf("cancel order=%s release product=%s quantity=%d failed: %v",
				orderID, line.ProductID, line.Quantity, err)
			failed = append(failed, line.ProductID)
		}
	}
	if len(failed) > 0 {
		if s.metrics != nil {
			s.metrics.PartialRelease()
		}
		return domain.Order{}, &domain.PartialReleaseError{OrderID: orderID, ProductIDs: failed}
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = now

	if s.metrics != nil {
		s.metrics.OrderCancelled()
	}
	s.publish(ctx, events.OrderCancelled(order.ID, order.BuyerID, now))

	return order, nil
}

// GetOrder returns one order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.ledger.GetOrder(ctx, orderID)
}

// ListOrders returns a buyer's order headers, newest first. Page indexes
// start at 1; out-of-range paging inputs are clamped rather than rejected.
func (s *OrderService) ListOrders(ctx context.Context, buyerID string, pageIndex, pageSize int) ([]domain.Order, error) {
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	offset := (pageIndex - 1) * pageSize
	return s.ledger.ListByBuyer(ctx, buyerID, offset, pageSize)
}

// releaseAll compensates reservations in reverse acquisition order. Failures
// are logged and counted but not returned: the caller is already failing the
// order, and a product that vanished mid-request must not block the rest of
// the compensation.
func (s *OrderService) releaseAll(ctx context.Context, reserved []domain.Reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		res := reserved[i]
		if err := s.inventory.Release(ctx, res.ProductID, res.Quantity); err != nil {
			s.logger.Printf("compensate product=%s quantity=%d failed: %v",
				res.ProductID, res.Quantity, err)
			if s.metrics != nil {
				s.metrics.PartialRelease()
			}
		}
	}
}

func (s *OrderService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Printf("publish event=%s order=%s failed: %v", evt.Type, evt.OrderID, err)
	}
}

// mergeLines collapses duplicate product ids into one line each and sorts
// the result by product id, fixing the reservation order across callers.
func mergeLines(lines []OrderLineInput) []OrderLineInput {
	byProduct := make(map[string]int, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] += line.Quantity
	}

	merged := make([]OrderLineInput, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, OrderLineInput{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged
}

func isInsufficientStock(err error) bool {
	_, ok := err.(*domain.InsufficientStockError)
	return ok
}
