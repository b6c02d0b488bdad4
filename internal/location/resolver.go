// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import "github.com/tomtom215/climbmap/internal/metrics"

// State is where the draft's coordinates currently come from.
type State string

const (
	// StateNone means no coordinates have been chosen.
	StateNone State = "none"

	// StateGPS means the coordinates were adopted from an image's metadata.
	StateGPS State = "gps"

	// StateManual means the user clicked a point on the map.
	StateManual State = "manual"
)

type gpsCandidate struct {
	id  string
	gps GPS
}

// Resolver chooses the coordinates attached to a new observation.
//
// Resolver is not safe for concurrent use; Draft serializes access.
type Resolver struct {
	state  State
	source string
	coords GPS
	picker bool

	// GPS-bearing images in upload order.
	candidates []gpsCandidate
}

// NewResolver returns a resolver with no coordinates and the picker hidden.
func NewResolver() *Resolver {
	return &Resolver{state: StateNone}
}

// OfferGPS records a GPS-bearing image. The first offer made while no
// coordinates are chosen is adopted and hides the picker. It reports whether
// the offer was adopted.
func (r *Resolver) OfferGPS(id string, gps GPS) bool {
	r.candidates = append(r.candidates, gpsCandidate{id: id, gps: gps})

	if r.state != StateNone {
		return false
	}
	r.adopt(r.candidates[len(r.candidates)-1])
	return true
}

// FinishBatch is called once every image of an upload batch has been offered.
// If nothing has been adopted the manual picker is shown.
func (r *Resolver) FinishBatch() {
	if r.state == StateNone {
		r.picker = true
	}
}

// ManualPick sets the coordinates from a map click, overriding any GPS adoption.
func (r *Resolver) ManualPick(lat, lng float64) {
	r.state = StateManual
	r.source = ""
	r.coords = GPS{Latitude: lat, Longitude: lng}
	r.picker = false
	metrics.LocationSources.WithLabelValues(string(StateManual)).Inc()
}

// SourceRemoved handles removal of an image. Removing the adopted source falls
// back to the next GPS-bearing image, or clears the coordinates and shows the
// picker when none is left. Manual picks are unaffected.
func (r *Resolver) SourceRemoved(id string) {
	for i, c := range r.candidates {
		if c.id == id {
			r.candidates = append(r.candidates[:i], r.candidates[i+1:]...)
			break
		}
	}

	if r.state != StateGPS || r.source != id {
		return
	}

	if len(r.candidates) > 0 {
		r.adopt(r.candidates[0])
		return
	}

	r.state = StateNone
	r.source = ""
	r.coords = GPS{}
	r.picker = true
}

// Coordinates returns the chosen coordinates, if any.
func (r *Resolver) Coordinates() (GPS, bool) {
	if r.state == StateNone {
		return GPS{}, false
	}
	return r.coords, true
}

// PickerVisible reports whether the manual-location map should be shown.
func (r *Resolver) PickerVisible() bool {
	return r.picker
}

// State returns the current coordinate source.
func (r *Resolver) State() State {
	return r.state
}

// Source returns the id of the adopted image while in StateGPS.
func (r *Resolver) Source() string {
	return r.source
}

func (r *Resolver) adopt(c gpsCandidate) {
	r.state = StateGPS
	r.source = c.id
	r.coords = c.gps
	r.picker = false
	metrics.LocationSources.WithLabelValues(string(StateGPS)).Inc()
}
