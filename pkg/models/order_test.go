package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusExecuted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusExecuted, OrderStatusCancelled, true},
		{OrderStatusExecuted, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusExecuted, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPairIsValid(t *testing.T) {
	for _, pair := range Pairs() {
		assert.True(t, pair.IsValid(), "%s", pair)
	}
	assert.False(t, Pair("EURUSD").IsValid())
	assert.False(t, Pair("").IsValid())
}

func TestEventEncode(t *testing.T) {
	evt := NewStatusChanged(Order{ID: 7, Status: OrderStatusExecuted})
	encoded := string(evt.Encode())
	assert.Contains(t, encoded, `"event_type":"order.status_changed"`)
	assert.Contains(t, encoded, `"order_id":7`)
	assert.Contains(t, encoded, `"status":"EXECUTED"`)
}
