// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package models

import "time"

const (
	unsplashSummit = "https://images.unsplash.com/photo-1506905925346-21bda4d32df4"
	unsplashRidge  = "https://images.unsplash.com/photo-1464822759844-d150ad2996e1"
	unsplashValley = "https://images.unsplash.com/photo-1470071459604-3b5ec3a7fe05"
)

// placeholderObservations keeps the map usable when the backend cannot be reached.
var placeholderObservations = []Observation{
	{
		ID:        1,
		UserID:    1,
		Caption:   "Beautiful sunrise from the summit!",
		ImageURLs: []string{unsplashSummit},
		Latitude:  37.7749,
		Longitude: -122.4194,
		Views:     42,
		CreatedAt: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
	},
	{
		ID:        2,
		UserID:    2,
		Caption:   "Epic climb today! The view was worth it.",
		ImageURLs: []string{unsplashRidge, unsplashSummit},
		Latitude:  40.0150,
		Longitude: -105.2705,
		Views:     18,
		CreatedAt: time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC),
	},
	{
		ID:        3,
		UserID:    1,
		Caption:   "Challenging route but made it to the top!",
		ImageURLs: []string{unsplashValley, unsplashSummit, unsplashRidge},
		Latitude:  38.5816,
		Longitude: -121.4944,
		Views:     67,
		CreatedAt: time.Date(2024, 1, 17, 10, 15, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 17, 10, 15, 0, 0, time.UTC),
	},
	{
		ID:        4,
		UserID:    3,
		Caption:   "First time here, absolutely stunning!",
		ImageURLs: []string{unsplashRidge},
		Latitude:  34.0522,
		Longitude: -118.2437,
		Views:     23,
		CreatedAt: time.Date(2024, 1, 18, 16, 45, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 18, 16, 45, 0, 0, time.UTC),
	},
	{
		ID:        5,
		UserID:    2,
		Caption:   "Perfect weather for climbing today!",
		ImageURLs: []string{unsplashSummit, unsplashValley, unsplashRidge, unsplashSummit},
		Latitude:  40.7608,
		Longitude: -111.8910,
		Views:     91,
		CreatedAt: time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC),
	},
}

// PlaceholderObservations returns a fresh copy of the fallback dataset.
// Callers may mutate the result freely.
func PlaceholderObservations() []Observation {
	return CloneObservations(placeholderObservations)
}
