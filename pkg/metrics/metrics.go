package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions counts access evaluations by result (granted|denied) and reason.
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"result", "reason"},
	)

	// DoorLockChanges counts emergency lock state transitions (lock|unlock).
	DoorLockChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_door_lock_changes_total",
			Help: "Total number of door lock and unlock operations",
		},
		[]string{"action"},
	)

	// AccessEventsPublished counts realtime events handed to the notifier.
	AccessEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_events_published_total",
			Help: "Total number of access events published to subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "access_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
