// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package spatial implements the viewport-driven aggregation pipeline.

Every resolved pan or zoom runs the same synchronous chain:

	Tracker.Read(viewport)  -> models.Bounds
	Filter(observations, b) -> observations inside b (inclusive edges)
	Selector.Select(...)    -> Render{Mode, Clusters, Individuals}

Below the zoom threshold (MinZoomLevel) the filtered set is aggregated by
Cluster into a fixed gridSize x gridSize grid laid over the bounds. At or
above the threshold the filtered observations are returned as individual
markers. A Render never carries both clusters and individuals.

All functions here are pure: no package state, no goroutines, no caching.
Clusters are recomputed from scratch on every call and have no identity, so
a cluster's center can move between nearby viewports even when the
underlying points don't change.

The Tracker holds the starting viewport and the settle delay used after the
map's initial load. It is configured explicitly per session.
*/
package spatial
