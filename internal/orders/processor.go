package orders

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/finvex/fxorders/pkg/metrics"
	"github.com/finvex/fxorders/pkg/models"
)

// ProcessorConfig controls the simulated processing behaviour. The constants
// are placeholders for a real matching-engine round trip; only the shape
// (randomized latency, timeout cutoff, rare post-execution reversal) is
// contractual.
type ProcessorConfig struct {
	// Durations is the discrete set of candidate processing latencies.
	Durations []time.Duration
	// Timeout is the cutoff: draws at or above it cancel the order.
	Timeout time.Duration
	// ClawbackOdds is the 1-in-N chance an executed order is reversed.
	// Zero disables clawbacks.
	ClawbackOdds int
	// ClawbackDelay is the upper bound for the pause before a reversal.
	ClawbackDelay time.Duration
}

// DefaultProcessorConfig returns the simulation constants used in production.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Durations: []time.Duration{
			200 * time.Millisecond,
			400 * time.Millisecond,
			600 * time.Millisecond,
			700 * time.Millisecond,
			2 * time.Second,
		},
		Timeout:       time.Second,
		ClawbackOdds:  6,
		ClawbackDelay: time.Second,
	}
}

// Processor drives a single order through its lifecycle in the background
// and publishes a status event for every transition it makes.
type Processor struct {
	store   *Store
	publish func(models.Event)
	logger  *zap.Logger
	cfg     ProcessorConfig
}

// NewProcessor creates a processor that mutates orders through store and
// emits events through publish.
func NewProcessor(logger *zap.Logger, store *Store, publish func(models.Event), cfg ProcessorConfig) *Processor {
	return &Processor{store: store, publish: publish, logger: logger, cfg: cfg}
}

// Process runs the lifecycle state machine for one order. It is scheduled
// exactly once per order, at creation. Returns early without effect when the
// order is no longer PENDING or when ctx is cancelled mid-wait.
func (p *Processor) Process(ctx context.Context, id int64) {
	order, err := p.store.Get(id)
	if err != nil {
		p.logger.Error("processor scheduled for unknown order", zap.Int64("order_id", id), zap.Error(err))
		return
	}
	if order.Status != models.OrderStatusPending {
		return
	}

	start := time.Now()
	duration := p.cfg.Durations[rand.Intn(len(p.cfg.Durations))]
	wait := duration
	if wait > p.cfg.Timeout {
		wait = p.cfg.Timeout
	}
	if !p.sleep(ctx, wait) {
		return
	}

	next := models.OrderStatusExecuted
	if duration >= p.cfg.Timeout {
		next = models.OrderStatusCancelled
	}
	updated, changed, err := p.store.UpdateStatus(id, next)
	if err != nil {
		p.logger.Error("status update failed", zap.Int64("order_id", id), zap.Error(err))
		return
	}
	if !changed {
		// The client cancelled the order while it was in flight.
		return
	}
	metrics.StatusTransitions.WithLabelValues(string(next)).Inc()
	metrics.ProcessingLatency.Observe(time.Since(start).Seconds())
	p.publish(models.NewStatusChanged(updated))
	p.logger.Debug("order processed",
		zap.Int64("order_id", id),
		zap.String("status", string(next)),
		zap.Duration("duration", duration))

	if next != models.OrderStatusExecuted || p.cfg.ClawbackOdds <= 0 {
		return
	}
	if rand.Intn(p.cfg.ClawbackOdds) != 0 {
		return
	}
	// Simulated post-trade failure: reverse the execution after a short pause.
	var pause time.Duration
	if p.cfg.ClawbackDelay > 0 {
		pause = time.Duration(rand.Int63n(int64(p.cfg.ClawbackDelay)))
	}
	if !p.sleep(ctx, pause) {
		return
	}
	updated, changed, err = p.store.UpdateStatus(id, models.OrderStatusCancelled)
	if err != nil || !changed {
		return
	}
	metrics.StatusTransitions.WithLabelValues(string(models.OrderStatusCancelled)).Inc()
	p.publish(models.NewStatusChanged(updated))
	p.logger.Debug("order clawed back", zap.Int64("order_id", id))
}

// sleep waits for d or until ctx is cancelled, without blocking the thread.
// Reports whether the full wait elapsed.
func (p *Processor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
