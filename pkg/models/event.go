package models

import (
	"encoding/json"
	"time"
)

// Event type constants for order domain events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Event is the message envelope broadcast to subscribers on every order
// status change. Subscribers may treat the encoded form as opaque text.
type Event struct {
	EventType  string      `json:"event_type"`
	OrderID    int64       `json:"order_id"`
	Status     OrderStatus `json:"status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewOrderCreated builds the event published when an order is accepted.
func NewOrderCreated(o Order) Event {
	return Event{
		EventType:  EventOrderCreated,
		OrderID:    o.ID,
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// NewStatusChanged builds the event published on a lifecycle transition.
func NewStatusChanged(o Order) Event {
	return Event{
		EventType:  EventOrderStatusChanged,
		OrderID:    o.ID,
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode serializes the event for the wire. Encoding an Event cannot fail,
// so the error is swallowed here rather than pushed onto every caller.
func (e Event) Encode() []byte {
	b, _ := json.Marshal(e)
	return b
}
