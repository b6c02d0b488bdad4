// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package spatial

import (
	"math"
	"sort"

	"github.com/tomtom215/climbmap/internal/models"
)

// DefaultGridSize is the number of cells along each axis of the clustering grid.
const DefaultGridSize = 10

// CellKey identifies a grid cell by column (X, longitude) and row (Y, latitude).
type CellKey struct {
	X, Y int
}

// cellAccumulator sums member coordinates for the mean center.
type cellAccumulator struct {
	sumLng float64
	sumLat float64
	count  int
}

// Cluster partitions observations into a gridSize x gridSize grid laid over b and
// returns one Cluster per occupied cell, centered on the mean of its members.
//
// Cell size is lngRange/gridSize by latRange/gridSize and a point's cell is
// floor((lng-minLng)/cellLng), floor((lat-minLat)/cellLat). A point exactly on the
// max edge belongs to the last cell. A zero-width span puts every point in cell 0
// along that axis. When b reaches past the antimeridian, longitudes are taken in
// b's frame (see models.Bounds.ShiftLng), so cluster centers can lie beyond ±180.
//
// Output is ordered row by row from the south-west cell, so equal inputs give
// equal outputs. An empty input yields an empty, non-nil slice.
func Cluster(observations []models.Observation, b models.Bounds, gridSize int) []models.Cluster {
	if len(observations) == 0 {
		return []models.Cluster{}
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}

	lngSpan := b.LngRange()
	latSpan := b.LatRange()
	cellLng := lngSpan / float64(gridSize)
	cellLat := latSpan / float64(gridSize)

	cells := make(map[CellKey]*cellAccumulator)
	for i := range observations {
		obs := &observations[i]
		lng, _ := b.ShiftLng(obs.Longitude)
		key := CellKey{
			X: cellIndex(lng-b.MinLng, cellLng, lngSpan, gridSize),
			Y: cellIndex(obs.Latitude-b.MinLat, cellLat, latSpan, gridSize),
		}

		acc, ok := cells[key]
		if !ok {
			acc = &cellAccumulator{}
			cells[key] = acc
		}
		acc.sumLng += lng
		acc.sumLat += obs.Latitude
		acc.count++
	}

	keys := make([]CellKey, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})

	clusters := make([]models.Cluster, 0, len(keys))
	for _, key := range keys {
		acc := cells[key]
		n := float64(acc.count)
		clusters = append(clusters, models.Cluster{
			Longitude: acc.sumLng / n,
			Latitude:  acc.sumLat / n,
			Count:     acc.count,
		})
	}
	return clusters
}

// cellIndex maps an offset from the grid origin to a cell index along one axis.
func cellIndex(offset, cellSize, span float64, gridSize int) int {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return 0
	}
	idx := int(math.Floor(offset / cellSize))
	if idx >= gridSize && offset <= span {
		idx = gridSize - 1
	}
	return idx
}
