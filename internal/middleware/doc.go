// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package middleware provides HTTP infrastructure middleware in chi's
func(http.Handler) http.Handler form.

  - RequestID: adopts or generates X-Request-ID and stores it in the logging
    context.
  - PrometheusMetrics: request count, duration and in-flight gauge labelled by
    chi route pattern.
  - PerformanceMonitor: sliding-window latency percentiles for the health
    endpoint, with slow-request warnings.
  - Compression: gzip for JSON and text responses; image previews and
    WebSocket upgrades pass through untouched.

Typical order on the router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression)
*/
package middleware
