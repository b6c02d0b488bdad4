// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package models

import "math"

// LngLat is a map position in signed decimal degrees, longitude first.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Bounds is the visible rectangle of a map viewport plus the zoom that produced it.
// Bounds are always derived from the viewport and never stored.
type Bounds struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
	Zoom   float64 `json:"zoom"`
}

// LngRange returns the longitudinal span of the rectangle.
func (b Bounds) LngRange() float64 {
	return b.MaxLng - b.MinLng
}

// LatRange returns the latitudinal span of the rectangle.
func (b Bounds) LatRange() float64 {
	return b.MaxLat - b.MinLat
}

// Contains reports whether the point lies inside the rectangle. All four edges are inclusive.
// Longitudes are compared through ShiftLng, so a rectangle reaching past the
// antimeridian also contains the wrapped copy of a point.
func (b Bounds) Contains(lng, lat float64) bool {
	if !(lat >= b.MinLat && lat <= b.MaxLat) {
		return false
	}
	_, ok := b.ShiftLng(lng)
	return ok
}

// ShiftLng returns lng expressed in the rectangle's longitude frame. A map that
// has been panned across the antimeridian reports bounds beyond ±180 (for
// example [170, 190]); a point at -179 is then shown at 181. Bounds within
// [-180, 180] never shift. ok is false when no copy of lng lies inside.
func (b Bounds) ShiftLng(lng float64) (shifted float64, ok bool) {
	if lng >= b.MinLng && lng <= b.MaxLng {
		return lng, true
	}
	if b.MinLng >= -180 && b.MaxLng <= 180 {
		return lng, false
	}
	shifted = lng + 360*math.Ceil((b.MinLng-lng)/360)
	return shifted, shifted <= b.MaxLng
}

// Cluster is an ephemeral aggregate of the observations in one grid cell.
// Clusters are rebuilt on every aggregation pass and carry no identity.
type Cluster struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Count     int     `json:"count"`
}
