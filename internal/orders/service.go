// Package orders implements the order book, submission validation, and the
// simulated background processing lifecycle.
package orders

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/finvex/fxorders/internal/rates"
	"github.com/finvex/fxorders/pkg/metrics"
	"github.com/finvex/fxorders/pkg/models"
)

// ErrServiceClosed is returned for submissions after shutdown has started.
var ErrServiceClosed = errors.New("order service closed")

// ValidationError aggregates every schema violation in a submission.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid order request: " + strings.Join(e.Violations, "; ")
}

// Service orchestrates validation, rate lookup, storage, and background
// processing for orders, and feeds the event stream the relay broadcasts.
type Service struct {
	logger    *zap.Logger
	store     *Store
	rates     rates.Provider
	processor *Processor
	events    chan models.Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewService wires the order service. eventBuffer sizes the upstream event
// channel consumed by the broadcast relay.
func NewService(logger *zap.Logger, store *Store, provider rates.Provider, cfg ProcessorConfig, eventBuffer int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		logger: logger,
		store:  store,
		rates:  provider,
		events: make(chan models.Event, eventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	s.processor = NewProcessor(logger, store, s.publish, cfg)
	return s
}

// Events is the upstream feed of order events, consumed by the relay.
func (s *Service) Events() <-chan models.Event {
	return s.events
}

// Create validates a raw submission, resolves its rate, stores it with
// status PENDING, publishes the created event, and schedules the background
// processor for it. Returns a *ValidationError for schema violations.
func (s *Service) Create(ctx context.Context, raw any) (models.Order, error) {
	if violations := ValidateOrderRequest(raw); len(violations) > 0 {
		return models.Order{}, &ValidationError{Violations: violations}
	}
	body := raw.(map[string]any)
	pair := models.Pair(body["pair"].(string))
	quantity, err := parseQuantity(body["quantity"])
	if err != nil {
		return models.Order{}, &ValidationError{Violations: []string{err.Error()}}
	}

	rate, err := s.rates.Rate(pair)
	if err != nil {
		// The validator accepts only pairs the provider knows, so this is a
		// config or programming defect. Fail loudly server-side.
		s.logger.Error("rate lookup failed for validated pair", zap.String("pair", string(pair)), zap.Error(err))
		return models.Order{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Order{}, ErrServiceClosed
	}
	order := s.store.Insert(models.Order{
		Pair:     pair,
		Quantity: quantity,
		Rate:     rate,
		Status:   models.OrderStatusPending,
	})
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.OrdersCreated.WithLabelValues(string(pair)).Inc()
	s.publish(models.NewOrderCreated(order))
	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("pair", string(pair)),
		zap.String("quantity", quantity.String()))

	go func() {
		defer s.wg.Done()
		s.processor.Process(s.ctx, order.ID)
	}()
	return order, nil
}

// List returns all orders in insertion order.
func (s *Service) List(ctx context.Context) []models.Order {
	return s.store.List()
}

// Get returns the order with the given id or ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, id int64) (models.Order, error) {
	return s.store.Get(id)
}

// Cancel idempotently cancels the order. A status event is published only
// when the call actually changed the status, so repeated cancellations do
// not emit duplicates.
func (s *Service) Cancel(ctx context.Context, id int64) (models.Order, error) {
	order, changed, err := s.store.Cancel(id)
	if err != nil {
		return models.Order{}, err
	}
	if changed {
		metrics.StatusTransitions.WithLabelValues(string(models.OrderStatusCancelled)).Inc()
		s.publish(models.NewStatusChanged(order))
		s.logger.Info("order cancelled", zap.Int64("order_id", id))
	}
	return order, nil
}

// Close stops accepting new orders, cancels in-flight processors, and joins
// them. The events channel is closed once the last processor has finished,
// signalling the relay that the upstream feed has ended.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	close(s.events)
}

// publish enqueues an event for the relay without ever blocking order
// handling; if the relay has fallen behind the buffered feed, the event is
// dropped and counted. Events raised after shutdown has started are
// discarded: the channel is closed once the last processor joins.
func (s *Service) publish(evt models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- evt:
	default:
		metrics.DeliveriesDropped.Inc()
		s.logger.Warn("event feed full, dropping event",
			zap.String("event_type", evt.EventType),
			zap.Int64("order_id", evt.OrderID))
	}
}
