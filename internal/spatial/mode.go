// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package spatial

import "github.com/tomtom215/climbmap/internal/models"

// MinZoomLevel is the zoom at which the map switches from clusters to individual markers.
const MinZoomLevel = 6.0

// Mode is the rendering mode chosen for one viewport.
type Mode string

const (
	// ModeClustered renders grid aggregates (zoom below the threshold).
	ModeClustered Mode = "clustered"

	// ModeIndividual renders one marker per observation (zoom at or above the threshold).
	ModeIndividual Mode = "individual"
)

// Render is the output of one pipeline pass. Exactly one of Clusters and
// Individuals may be non-empty; the other is an empty slice.
type Render struct {
	Mode        Mode                 `json:"mode"`
	Clusters    []models.Cluster     `json:"clusters"`
	Individuals []models.Observation `json:"observations"`
}

// Selector chooses between clustered and individual rendering.
type Selector struct {
	// Threshold is the zoom at which individual rendering starts. Zero means MinZoomLevel.
	Threshold float64

	// GridSize is passed to Cluster. Zero means DefaultGridSize.
	GridSize int
}

// ModeFor returns the mode for zoom. There is no hysteresis: a zoom exactly at
// the threshold is individual.
func (s Selector) ModeFor(zoom float64) Mode {
	if zoom >= s.threshold() {
		return ModeIndividual
	}
	return ModeClustered
}

// Select builds the Render for an already filtered set of observations.
func (s Selector) Select(filtered []models.Observation, b models.Bounds) Render {
	if s.ModeFor(b.Zoom) == ModeIndividual {
		individuals := filtered
		if individuals == nil {
			individuals = []models.Observation{}
		}
		return Render{
			Mode:        ModeIndividual,
			Clusters:    []models.Cluster{},
			Individuals: individuals,
		}
	}

	return Render{
		Mode:        ModeClustered,
		Clusters:    Cluster(filtered, b, s.gridSize()),
		Individuals: []models.Observation{},
	}
}

// Apply runs Filter followed by Select over the full observation set.
func (s Selector) Apply(observations []models.Observation, b models.Bounds) Render {
	return s.Select(Filter(observations, b), b)
}

func (s Selector) threshold() float64 {
	if s.Threshold == 0 {
		return MinZoomLevel
	}
	return s.Threshold
}

func (s Selector) gridSize() int {
	if s.GridSize <= 0 {
		return DefaultGridSize
	}
	return s.GridSize
}
