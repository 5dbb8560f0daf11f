package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/finvex/fxorders/internal/rates"
	"github.com/finvex/fxorders/pkg/models"
)

func newTestService(t *testing.T, cfg ProcessorConfig) *Service {
	t.Helper()
	svc := NewService(zaptest.NewLogger(t), NewStore(), rates.NewFixed(), cfg, 64)
	t.Cleanup(svc.Close)
	return svc
}

func recvEvent(t *testing.T, events <-chan models.Event) models.Event {
	t.Helper()
	select {
	case evt := <-events:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}

func TestServiceCreate(t *testing.T) {
	svc := newTestService(t, ProcessorConfig{
		Durations: []time.Duration{time.Millisecond},
		Timeout:   50 * time.Millisecond,
	})
	ctx := context.Background()

	order, err := svc.Create(ctx, map[string]any{"pair": "EURSEK", "quantity": float64(125)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "11.0886", order.Rate.String())
	assert.Equal(t, "125", order.Quantity.String())

	created := recvEvent(t, svc.Events())
	assert.Equal(t, models.EventOrderCreated, created.EventType)
	assert.Equal(t, order.ID, created.OrderID)
	assert.Equal(t, models.OrderStatusPending, created.Status)

	processed := recvEvent(t, svc.Events())
	assert.Equal(t, models.EventOrderStatusChanged, processed.EventType)
	assert.Equal(t, order.ID, processed.OrderID)
	assert.Equal(t, models.OrderStatusExecuted, processed.Status)

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExecuted, got.Status)
}

func TestServiceCreateAssignsIncreasingIDs(t *testing.T) {
	svc := newTestService(t, ProcessorConfig{
		Durations: []time.Duration{time.Millisecond},
		Timeout:   50 * time.Millisecond,
	})
	ctx := context.Background()

	first, err := svc.Create(ctx, map[string]any{"pair": "EURSEK", "quantity": float64(1)})
	require.NoError(t, err)
	second, err := svc.Create(ctx, map[string]any{"pair": "SEKPOU", "quantity": "2"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "0.0677", second.Rate.String())
}

func TestServiceCreateInvalid(t *testing.T) {
	svc := newTestService(t, DefaultProcessorConfig())

	_, err := svc.Create(context.Background(), map[string]any{"quantity": float64(-50)})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
	assert.Empty(t, svc.List(context.Background()))
}

func TestServiceCancelIdempotentWithoutDuplicateEvent(t *testing.T) {
	svc := newTestService(t, ProcessorConfig{
		Durations: []time.Duration{500 * time.Millisecond},
		Timeout:   time.Second,
	})
	ctx := context.Background()

	order, err := svc.Create(ctx, map[string]any{"pair": "EURSEK", "quantity": float64(10)})
	require.NoError(t, err)
	created := recvEvent(t, svc.Events())
	assert.Equal(t, models.EventOrderCreated, created.EventType)

	cancelled, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	evt := recvEvent(t, svc.Events())
	assert.Equal(t, models.EventOrderStatusChanged, evt.EventType)
	assert.Equal(t, models.OrderStatusCancelled, evt.Status)

	// Cancelling again succeeds without emitting another event.
	again, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
	select {
	case extra := <-svc.Events():
		t.Fatalf("unexpected event after repeated cancel: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc := newTestService(t, DefaultProcessorConfig())
	_, err := svc.Get(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestServiceCloseJoinsProcessorsAndEndsFeed(t *testing.T) {
	svc := newTestService(t, ProcessorConfig{
		Durations: []time.Duration{200 * time.Millisecond},
		Timeout:   time.Second,
	})
	ctx := context.Background()

	_, err := svc.Create(ctx, map[string]any{"pair": "EURSEK", "quantity": float64(1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, map[string]any{"pair": "DOLSEK", "quantity": float64(2)})
	require.NoError(t, err)

	svc.Close()

	// The feed must end once the last processor has joined.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-svc.Events():
			if !ok {
				goto closed
			}
		case <-deadline:
			t.Fatal("event feed not closed after Close")
		}
	}
closed:
	_, err = svc.Create(ctx, map[string]any{"pair": "EURSEK", "quantity": float64(1)})
	assert.True(t, errors.Is(err, ErrServiceClosed))
}
