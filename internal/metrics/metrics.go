// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsIngested counts persisted emotion events by source type.
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soulsync_events_ingested_total",
		Help: "Emotion events persisted to the history store, by source type.",
	}, []string{"source"})

	// AlertsRecorded counts persisted drift alerts.
	AlertsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soulsync_alerts_recorded_total",
		Help: "Drift alerts persisted to the alert log.",
	})

	// DriftAnalyses counts on-demand stability computations.
	DriftAnalyses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soulsync_drift_analyses_total",
		Help: "Drift/stability analyses performed.",
	})

	// ProviderCalls counts external media capability calls by mode and outcome.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soulsync_provider_calls_total",
		Help: "External media provider calls, by mode and outcome.",
	}, []string{"mode", "outcome"})

	// HTTPRequestDuration observes API handler latency by route and status class.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soulsync_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status class.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
