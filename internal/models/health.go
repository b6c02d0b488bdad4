// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package models

// HealthStatus is the body of GET /health.
//
// Status is "healthy" while the backend circuit breaker is closed and
// "degraded" otherwise. The service keeps answering while degraded: map
// sessions fall back to the placeholder dataset.
type HealthStatus struct {
	Status           string      `json:"status"`
	Version          string      `json:"version"`
	BackendBreaker   string      `json:"backend_breaker"`
	Sessions         int         `json:"sessions"`
	Drafts           int         `json:"drafts"`
	WebSocketClients int         `json:"websocket_clients"`
	Uptime           float64     `json:"uptime_seconds"`
	Endpoints        interface{} `json:"endpoints,omitempty"`
}
