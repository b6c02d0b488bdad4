// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (labels: method, endpoint, status_code)
  - api_request_duration_seconds: Request latency (labels: method, endpoint)
  - api_active_requests: Requests in flight

Backend Metrics:
  - backend_request_duration_seconds: Backend call latency (label: operation)
  - backend_request_errors_total: Failed calls (labels: operation, kind)
  - backend_rate_limit_retries_total: Listing retries after HTTP 429
  - observation_listing_loads_total: Listing loads (label: source)
  - circuit_breaker_*: Breaker state, requests and transitions

Map Metrics:
  - map_sessions_active, map_sessions_reaped_total
  - map_render_duration_seconds (label: mode)
  - observation_view_increments_total (label: result)

Creation Metrics:
  - creation_drafts_active, creation_submissions_total (label: result)
  - image_previews_stored (label: store)
  - location_resolutions_total (label: source)

WebSocket Metrics:
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_received_total, websocket_errors_total

# Thread Safety

All metric operations are thread-safe; Prometheus collectors use atomic
operations internally.
*/
package metrics
