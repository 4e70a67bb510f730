// Package metrics exposes the Prometheus collectors shared by the
// ingestion and worker binaries, built with promauto the way the teacher's
// internal/common/ingest/metrics package does.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventflow",
		Name:      "events_received_total",
		Help:      "Number of events accepted by the ingestion service.",
	})

	EventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventflow",
		Name:      "events_processed_total",
		Help:      "Number of events successfully persisted as processed.",
	})

	EventsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventflow",
		Name:      "events_failed_total",
		Help:      "Number of events dead-lettered, labeled by the reason they failed.",
	}, []string{"reason"})

	EventsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventflow",
		Name:      "events_duplicate_total",
		Help:      "Number of deliveries short-circuited by an existing processed record.",
	})

	EventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventflow",
		Name:      "event_processing_duration_seconds",
		Help:      "Time spent processing one queue entry end to end.",
		Buckets:   prometheus.DefBuckets,
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventflow",
		Name:      "queue_depth",
		Help:      "Current length of the event stream.",
	})

	PendingMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventflow",
		Name:      "pending_messages",
		Help:      "Entries delivered to the consumer group but not yet acknowledged.",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventflow",
		Name:      "active_workers",
		Help:      "Number of worker goroutines currently running their receive loop.",
	})
)

// Reason labels used with EventsFailedTotal.
const (
	ReasonValidation = "validation"
	ReasonPersist    = "persist"
)
