package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated   = "order.created"
	TypeOrderCancelled = "order.cancelled"
)

// Event is the wire contract for order lifecycle notifications.
type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	BuyerID   string         `json:"buyer_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// OrderCreated builds the event emitted after an order commits.
func OrderCreated(orderID, buyerID, total string, at time.Time) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      TypeOrderCreated,
		OrderID:   orderID,
		BuyerID:   buyerID,
		Payload:   map[string]any{"total": total},
		CreatedAt: at,
	}
}

// OrderCancelled builds the event emitted after a cancellation releases its
// stock.
func OrderCancelled(orderID, buyerID string, at time.Time) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      TypeOrderCancelled,
		OrderID:   orderID,
		BuyerID:   buyerID,
		CreatedAt: at,
	}
}

// Publisher delivers events to downstream consumers. Publishing is best
// effort from the workflows' point of view; a failed publish never fails the
// order operation that produced it.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
