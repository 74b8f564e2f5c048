package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "productflow_events_enqueued_total",
		Help: "Total number of input events placed on a session queue.",
	})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productflow_events_processed_total",
		Help: "Total number of input events applied, labelled by event type and status.",
	}, []string{"event_type", "status"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "productflow_events_dropped_total",
		Help: "Total number of input events rejected due to a full session queue.",
	})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productflow_editor_changes_total",
		Help: "Total number of editor state changes, labelled by operation.",
	}, []string{"op"})

	EventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "productflow_event_processing_duration_ms",
		Help:    "Latency from event submission to applied change in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	QueueUtilization = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "productflow_queue_utilization_ratio",
		Help: "Current session queue utilization (0-1), labelled by session.",
	}, []string{"session"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "productflow_sessions_active",
		Help: "Number of open editor sessions.",
	})

	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "productflow_scene_subscribers",
		Help: "Number of connected scene stream clients.",
	})

	CatalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productflow_catalog_fetches_total",
		Help: "Catalog fetch attempts, labelled by status (ok, error, rejected).",
	}, []string{"status"})

	CatalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "productflow_catalog_items",
		Help: "Number of items currently held by the catalog store.",
	})
)
