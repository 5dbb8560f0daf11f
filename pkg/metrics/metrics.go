package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrdersCreated counts accepted orders by pair.
var OrdersCreated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fxorders_orders_created_total",
		Help: "Total number of orders accepted by the service",
	},
	[]string{"pair"},
)

// StatusTransitions counts order lifecycle transitions by resulting status.
var StatusTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fxorders_status_transitions_total",
		Help: "Total number of order status transitions",
	},
	[]string{"status"},
)

// ProcessingLatency records simulated processing latency per order.
var ProcessingLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "fxorders_order_processing_latency_seconds",
		Help:    "Latency in seconds from order creation to its first terminal transition",
		Buckets: prometheus.DefBuckets,
	},
)

// Broadcast relay metrics
var (
	SubscribersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fxorders_relay_subscribers",
			Help: "Number of currently registered event subscribers",
		},
	)

	EventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxorders_relay_events_published_total",
			Help: "Total number of events ingested by the broadcast relay",
		},
	)

	DeliveriesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxorders_relay_deliveries_dropped_total",
			Help: "Total number of per-subscriber deliveries dropped due to a full queue",
		},
	)
)

func init() {
	prometheus.MustRegister(OrdersCreated, StatusTransitions, ProcessingLatency)
	prometheus.MustRegister(SubscribersActive, EventsPublished, DeliveriesDropped)
}
