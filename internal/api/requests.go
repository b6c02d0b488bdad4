// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import "github.com/tomtom215/climbmap/internal/models"

// Viewport event names accepted from the browser.
const (
	ViewportEventLoad    = "load"
	ViewportEventMoveEnd = "moveend"
)

// LngLatRequest is a map corner. Longitudes are not range-checked because a
// map wrapped around the antimeridian reports values beyond ±180.
type LngLatRequest struct {
	Lng float64 `json:"lng" validate:"finite"`
	Lat float64 `json:"lat" validate:"finite,latitude"`
}

func (l *LngLatRequest) toModel() models.LngLat {
	return models.LngLat{Lng: l.Lng, Lat: l.Lat}
}

// ViewportRequest is a map event reported by the browser.
type ViewportRequest struct {
	Event     string         `json:"event" validate:"required,oneof=load moveend"`
	SouthWest *LngLatRequest `json:"south_west" validate:"required"`
	NorthEast *LngLatRequest `json:"north_east" validate:"required"`
	Zoom      float64        `json:"zoom" validate:"finite,gte=0,lte=24"`
}

// SelectRequest opens the detail panel for one observation.
type SelectRequest struct {
	ObservationID int64 `json:"observation_id" validate:"required,gt=0"`
}

// LocationRequest is a manual location pick.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,finite,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,finite,longitude"`
}

// SubmitRequest carries the creation form fields. Coordinates are text as the
// user typed them; empty means "use the resolved location". The location
// package validates all three.
type SubmitRequest struct {
	Caption   string `json:"caption"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// ClustersRequest is the query of the stateless render endpoint.
type ClustersRequest struct {
	West  float64 `json:"west" validate:"finite"`
	South float64 `json:"south" validate:"finite,latitude"`
	East  float64 `json:"east" validate:"finite,gtefield=West"`
	North float64 `json:"north" validate:"finite,latitude,gtefield=South"`
	Zoom  float64 `json:"zoom" validate:"finite,gte=0,lte=24"`
}

func (c *ClustersRequest) bounds() models.Bounds {
	return models.Bounds{
		MinLng: c.West,
		MinLat: c.South,
		MaxLng: c.East,
		MaxLat: c.North,
		Zoom:   c.Zoom,
	}
}

// ListRequest pages through the backend listing.
type ListRequest struct {
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=1,lte=1000"`
}
