// Package metrics holds the Prometheus collectors of the order pipeline.
// Collectors are package globals; Register adds them to a registry once at start-up.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderflow"

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeIgnored   = "ignored"
	OutcomeDelivered = "delivered"
	OutcomeCanceled  = "canceled"
	OutcomeHit       = "hit"
	OutcomeMiss      = "miss"
)

var (
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Publish attempts by topic, event type and outcome",
		},
		[]string{"topic", "event_type", "outcome"},
	)

	PublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of one publish attempt per transport",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	StageEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_events_total",
			Help:      "Inbound events per stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	DeliveriesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deliveries_active",
			Help:      "Delivery runs currently streaming locations",
		},
	)

	DeliveriesFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_finished_total",
			Help:      "Delivery runs that reached the destination or were canceled",
		},
		[]string{"outcome"},
	)

	WaypointsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waypoints_sent_total",
			Help:      "Location updates emitted by delivery runs",
		},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result",
		},
		[]string{"outcome"},
	)

	InventoryRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_refresh_total",
			Help:      "Ledger refreshes from the inventory store",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Later calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			EventsPublishedTotal,
			PublishDuration,
			StageEventsTotal,
			DeliveriesActive,
			DeliveriesFinishedTotal,
			WaypointsSentTotal,
			GeocodeCacheTotal,
			InventoryRefreshTotal,
		)
	})
}
