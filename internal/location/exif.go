// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"bytes"
	"math"

	"github.com/rwcarlsen/goexif/exif"
)

// GPS is a coordinate pair read from image metadata or picked on the map.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both values are finite and in range.
func (g GPS) Valid() bool {
	if math.IsNaN(g.Latitude) || math.IsNaN(g.Longitude) ||
		math.IsInf(g.Latitude, 0) || math.IsInf(g.Longitude, 0) {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

// GPSExtractor reads a coordinate pair from raw image bytes.
type GPSExtractor func(data []byte) (GPS, bool)

// ExtractGPS reads the EXIF GPS position of an image. Any failure (no EXIF
// block, missing tags, unparsable rationals) means the image carries no GPS.
func ExtractGPS(data []byte) (gps GPS, ok bool) {
	// goexif can panic on truncated TIFF structures.
	defer func() {
		if r := recover(); r != nil {
			gps, ok = GPS{}, false
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return GPS{}, false
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return GPS{}, false
	}

	gps = GPS{Latitude: lat, Longitude: lng}
	if !gps.Valid() {
		return GPS{}, false
	}
	return gps, true
}
