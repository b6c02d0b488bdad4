// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package spatial

import "github.com/tomtom215/climbmap/internal/models"

// Filter returns the observations whose coordinates lie inside b, in input order.
// All four edges are inclusive and bounds past the antimeridian match wrapped
// longitudes. Returned observations keep their stored coordinates. The result
// is never nil.
func Filter(observations []models.Observation, b models.Bounds) []models.Observation {
	out := make([]models.Observation, 0, len(observations))
	for i := range observations {
		if b.Contains(observations[i].Longitude, observations[i].Latitude) {
			out = append(out, observations[i])
		}
	}
	return out
}
