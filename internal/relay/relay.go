// Package relay implements the fan-in/fan-out bridge between the order
// event feed and the set of live subscribers.
package relay

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finvex/fxorders/pkg/metrics"
	"github.com/finvex/fxorders/pkg/models"
)

// ErrClosed is returned by Subscribe after the relay has shut down.
var ErrClosed = errors.New("relay closed")

// Subscriber is one listener's private ordered event queue. It is created
// by Subscribe, delivers events in publish order, and is closed by the relay
// on Unsubscribe or shutdown.
type Subscriber struct {
	id uuid.UUID
	ch chan models.Event
}

// ID identifies the subscriber in logs.
func (s *Subscriber) ID() uuid.UUID { return s.id }

// Events is the queue to receive from. It is closed when the subscription
// ends.
func (s *Subscriber) Events() <-chan models.Event { return s.ch }

// Relay ingests events from a single upstream source and republishes each
// one to every currently registered subscriber. Membership changes and
// fan-out are serialized by the run loop, so iteration never observes a
// half-updated subscriber set. Delivery to one subscriber never stalls
// delivery to the rest: a full queue drops the event for that subscriber
// only (drop-newest policy, counted and logged).
type Relay struct {
	logger    *zap.Logger
	source    <-chan models.Event
	queueSize int

	register    chan *Subscriber
	unregister  chan *Subscriber
	subscribers map[uuid.UUID]*Subscriber

	done chan struct{}
}

// New creates a relay over the given upstream source. queueSize bounds each
// subscriber's private queue.
func New(logger *zap.Logger, source <-chan models.Event, queueSize int) *Relay {
	return &Relay{
		logger:      logger,
		source:      source,
		queueSize:   queueSize,
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		subscribers: make(map[uuid.UUID]*Subscriber),
		done:        make(chan struct{}),
	}
}

// Run is the relay's single long-lived ingestion loop. It serves
// subscription changes and fans out every upstream event until ctx is
// cancelled or the source is closed. On exit every subscriber queue is
// closed, ending the subscribers' receive loops.
func (r *Relay) Run(ctx context.Context) {
	defer func() {
		for id, sub := range r.subscribers {
			delete(r.subscribers, id)
			close(sub.ch)
		}
		metrics.SubscribersActive.Set(0)
		close(r.done)
		r.logger.Info("relay stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-r.register:
			r.subscribers[sub.id] = sub
			metrics.SubscribersActive.Set(float64(len(r.subscribers)))
			r.logger.Debug("subscriber registered", zap.String("subscriber", sub.id.String()))
		case sub := <-r.unregister:
			if _, ok := r.subscribers[sub.id]; !ok {
				continue
			}
			delete(r.subscribers, sub.id)
			close(sub.ch)
			metrics.SubscribersActive.Set(float64(len(r.subscribers)))
			r.logger.Debug("subscriber removed", zap.String("subscriber", sub.id.String()))
		case evt, ok := <-r.source:
			if !ok {
				return
			}
			metrics.EventsPublished.Inc()
			for _, sub := range r.subscribers {
				select {
				case sub.ch <- evt:
				default:
					// Slow subscriber; dropping here keeps the fan-out from
					// stalling everyone else.
					metrics.DeliveriesDropped.Inc()
					r.logger.Warn("subscriber queue full, dropping event",
						zap.String("subscriber", sub.id.String()),
						zap.Int64("order_id", evt.OrderID))
				}
			}
		}
	}
}

// Subscribe registers a new subscriber and returns its private queue.
func (r *Relay) Subscribe() (*Subscriber, error) {
	sub := &Subscriber{id: uuid.New(), ch: make(chan models.Event, r.queueSize)}
	select {
	case r.register <- sub:
		return sub, nil
	case <-r.done:
		return nil, ErrClosed
	}
}

// Unsubscribe removes the subscriber and closes its queue. It must be
// called when the owning connection ends; subscriptions do not outlive
// their connection. Safe to call after shutdown.
func (r *Relay) Unsubscribe(sub *Subscriber) {
	select {
	case r.unregister <- sub:
	case <-r.done:
	}
}

// Done is closed when the run loop has exited.
func (r *Relay) Done() <-chan struct{} { return r.done }
