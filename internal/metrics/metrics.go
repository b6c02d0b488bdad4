// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Observation backend calls and circuit breaker state
// - Map sessions, render passes and view increments
// - Creation drafts and image previews
// - WebSocket connections

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Observation Backend Metrics
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of observation backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "list", "create", "increment_view"
	)

	BackendRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_request_errors_total",
			Help: "Total number of failed observation backend calls",
		},
		[]string{"operation", "kind"}, // kind: "connectivity", "response"
	)

	BackendRateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backend_rate_limit_retries_total",
			Help: "Total number of listing retries after HTTP 429",
		},
	)

	ListingLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observation_listing_loads_total",
			Help: "Total number of observation listing loads by source",
		},
		[]string{"source"}, // "live", "placeholder", "cache"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Map Session Metrics
	MapSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "map_sessions_active",
			Help: "Current number of live map sessions",
		},
	)

	MapSessionsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "map_sessions_reaped_total",
			Help: "Total number of map sessions closed for inactivity",
		},
	)

	MapRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "map_render_duration_seconds",
			Help:    "Time spent filtering and aggregating one render pass",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"mode"}, // "clustered", "individual"
	)

	ViewIncrements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observation_view_increments_total",
			Help: "Observation view increment attempts by outcome",
		},
		[]string{"result"}, // "applied", "stale", "failed", "skipped"
	)

	// Creation Draft Metrics
	DraftsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "creation_drafts_active",
			Help: "Current number of open creation drafts",
		},
	)

	DraftSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creation_submissions_total",
			Help: "Observation submissions by outcome",
		},
		[]string{"result"}, // "created", "invalid", "failed"
	)

	PreviewsStored = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_previews_stored",
			Help: "Current number of image previews held by the preview store",
		},
		[]string{"store"},
	)

	LocationSources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_resolutions_total",
			Help: "Resolved draft coordinates by source",
		},
		[]string{"source"}, // "gps", "manual"
	)

	ImageRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_rejections_total",
			Help: "Staged images refused at intake by reason",
		},
		[]string{"reason"}, // "type", "size", "capacity"
	)

	PreviewStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_preview_store_errors_total",
			Help: "Preview store command failures",
		},
		[]string{"store", "command"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendCall records the latency of a backend call and, on failure, its error kind.
// kind is empty for successful calls.
func RecordBackendCall(operation string, duration time.Duration, kind string) {
	BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if kind != "" {
		BackendRequestErrors.WithLabelValues(operation, kind).Inc()
	}
}

// RecordRender records one filter+aggregate pass
func RecordRender(mode string, duration time.Duration) {
	MapRenderDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// SetAppInfo publishes the running version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
