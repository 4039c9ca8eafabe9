package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Router metrics
	EventsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "router",
			Name:      "events_routed_total",
			Help:      "Total number of server events routed into actions",
		},
		[]string{"event_type"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "router",
			Name:      "events_dropped_total",
			Help:      "Total number of server events dropped without actions",
		},
		[]string{"reason"},
	)

	// Store metrics
	ActionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "store",
			Name:      "actions_dispatched_total",
			Help:      "Total number of actions applied to canvas state",
		},
		[]string{"action_type"},
	)

	// Stroke batch metrics
	BatchesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "batch",
			Name:      "fetched_total",
			Help:      "Total number of stroke batches fetched successfully",
		},
	)

	BatchesDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "batch",
			Name:      "deduped_total",
			Help:      "Total number of stroke-ready signals skipped as already fetched",
		},
	)

	BatchFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "batch",
			Name:      "fetch_failures_total",
			Help:      "Total number of stroke batch fetch failures",
		},
	)

	PointsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "batch",
			Name:      "points_dispatched_total",
			Help:      "Total number of per-point pen dispatches during batch animation",
		},
	)

	// Transport metrics
	TransportReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		},
	)

	TransportDecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "transport",
			Name:      "decode_errors_total",
			Help:      "Total number of inbound frames that failed to decode",
		},
	)
)
