// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package cache provides a generic, thread-safe in-memory TTL cache.

The observation listing is fetched by every map session when it opens and on
refresh. Cache lets those loads share one backend response for a short window
instead of issuing one GET per session.

	c := cache.New[backend.Listing](5*time.Second, 0)
	defer c.Close()

Stats (hits, misses, evictions) are kept for diagnostics; callers export them
to Prometheus through the metrics package.
*/
package cache
