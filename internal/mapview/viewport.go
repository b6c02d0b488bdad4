// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package mapview

import "github.com/tomtom215/climbmap/internal/models"

// Viewport is the map state last reported by the browser. The zero value is
// a map that has not finished loading.
type Viewport struct {
	sw     models.LngLat
	ne     models.LngLat
	zoom   float64
	loaded bool
}

// NewViewport returns a loaded viewport with the given corners and zoom.
func NewViewport(southWest, northEast models.LngLat, zoom float64) Viewport {
	return Viewport{sw: southWest, ne: northEast, zoom: zoom, loaded: true}
}

func (v Viewport) Loaded() bool             { return v.loaded }
func (v Viewport) SouthWest() models.LngLat { return v.sw }
func (v Viewport) NorthEast() models.LngLat { return v.ne }
func (v Viewport) Zoom() float64            { return v.zoom }
