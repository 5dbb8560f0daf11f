package orders

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finvex/fxorders/pkg/models"
)

// ErrOrderNotFound indicates a lookup for an id with no stored order.
var ErrOrderNotFound = errors.New("order not found")

// Store is the transient in-memory order book. It is the single shared
// mutable resource between the request handlers and the background
// processors, so every read-modify-write sequence runs under one lock.
type Store struct {
	mu     sync.Mutex
	orders []models.Order
	index  map[int64]int // order id -> position in orders
	nextID int64
}

// NewStore creates an empty order book.
func NewStore() *Store {
	return &Store{index: make(map[int64]int), nextID: 1}
}

// List returns a snapshot of all orders in insertion order.
func (s *Store) List() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Get returns the order with the given id.
func (s *Store) Get(id int64) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	return s.orders[pos], nil
}

// Insert assigns the next monotonic id, stamps timestamps, and appends the
// order. The stored order is returned.
func (s *Store) Insert(order models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	order.ID = s.nextID
	order.CreatedAt = now
	order.UpdatedAt = now
	s.nextID++
	s.index[order.ID] = len(s.orders)
	s.orders = append(s.orders, order)
	return order
}

// UpdateStatus applies a lifecycle transition. Transitions the status
// machine forbids (anything out of CANCELLED, EXECUTED back to PENDING) are
// refused with changed == false, which makes concurrent client cancellation
// and background processing safe to interleave. The returned order reflects
// the stored state after the call.
func (s *Store) UpdateStatus(id int64, next models.OrderStatus) (models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return models.Order{}, false, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	order := s.orders[pos]
	if !order.Status.CanTransitionTo(next) {
		return order, false, nil
	}
	order.Status = next
	order.UpdatedAt = time.Now().UTC()
	s.orders[pos] = order
	return order, true, nil
}

// Cancel forces the order to CANCELLED if it is not there already.
// Cancelling a cancelled order is a no-op, reported via changed == false.
func (s *Store) Cancel(id int64) (models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return models.Order{}, false, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	order := s.orders[pos]
	if order.Status == models.OrderStatusCancelled {
		return order, false, nil
	}
	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = time.Now().UTC()
	s.orders[pos] = order
	return order, true, nil
}
