// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package spatial

import (
	"time"

	"github.com/tomtom215/climbmap/internal/models"
)

// DefaultSettleDelay is how long to wait after the initial map load before the
// first bounds read, giving the map time to compute valid bounds.
const DefaultSettleDelay = 100 * time.Millisecond

// Viewport is the live state of a map view.
//
// Loaded reports whether the map has finished initializing. Until it has,
// the corner and zoom values are meaningless and must not be read.
type Viewport interface {
	Loaded() bool
	SouthWest() models.LngLat
	NorthEast() models.LngLat
	Zoom() float64
}

// TrackerConfig holds the per-session viewport settings.
type TrackerConfig struct {
	// DefaultCenter is where a new map view starts.
	DefaultCenter models.LngLat

	// DefaultZoom is the zoom a new map view starts at.
	DefaultZoom float64

	// SettleDelay is the wait between the map's load event and the first read.
	// Default: 100ms
	SettleDelay time.Duration
}

// DefaultTrackerConfig centers on the contiguous United States at a zoom where
// clusters are shown.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		DefaultCenter: models.LngLat{Lng: -98.5795, Lat: 39.8283},
		DefaultZoom:   4,
		SettleDelay:   DefaultSettleDelay,
	}
}

// Tracker derives Bounds from a Viewport.
type Tracker struct {
	config TrackerConfig
}

// NewTracker creates a Tracker. A non-positive settle delay falls back to DefaultSettleDelay.
func NewTracker(config TrackerConfig) *Tracker {
	if config.SettleDelay <= 0 {
		config.SettleDelay = DefaultSettleDelay
	}
	return &Tracker{config: config}
}

// Read returns the current bounds of vp. It reports false, without touching the
// viewport's corners, when vp is nil or not yet loaded.
func (t *Tracker) Read(vp Viewport) (models.Bounds, bool) {
	if vp == nil || !vp.Loaded() {
		return models.Bounds{}, false
	}

	sw := vp.SouthWest()
	ne := vp.NorthEast()

	return models.Bounds{
		MinLng: sw.Lng,
		MinLat: sw.Lat,
		MaxLng: ne.Lng,
		MaxLat: ne.Lat,
		Zoom:   vp.Zoom(),
	}, true
}

// AfterLoad schedules fire once the settle delay has elapsed. The returned
// function cancels the pending call and reports whether it was still pending.
func (t *Tracker) AfterLoad(fire func()) (stop func() bool) {
	timer := time.AfterFunc(t.config.SettleDelay, fire)
	return timer.Stop
}

// DefaultViewport returns the configured starting center and zoom.
func (t *Tracker) DefaultViewport() (models.LngLat, float64) {
	return t.config.DefaultCenter, t.config.DefaultZoom
}

// SettleDelay returns the effective settle delay.
func (t *Tracker) SettleDelay() time.Duration {
	return t.config.SettleDelay
}
