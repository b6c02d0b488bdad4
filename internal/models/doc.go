// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package models defines the data structures shared across Climbmap.

Key Components:

  - Observation: a geotagged post as served by the observation backend
  - Bounds: the visible rectangle of a map viewport plus its zoom level
  - Cluster: an ephemeral grid-cell aggregate produced per viewport
  - LngLat: a map position (viewport corners, manual map picks)
  - APIResponse / APIError / Metadata: the HTTP response envelope

Coordinate Order:

Bounds, Cluster and LngLat are longitude first. Observation keeps the backend's
(latitude, longitude) field order. Conversions happen only in the spatial and
location packages so an axis swap cannot slip in silently.

Backend Compatibility:

Observation decoding reconciles the backend's created_at field with the older
dateposted key and accepts naive ISO timestamps (read as UTC).

Fallback Data:

PlaceholderObservations returns the dataset shown when the observation listing
cannot be loaded, so the map stays usable while the backend is unreachable.
*/
package models
