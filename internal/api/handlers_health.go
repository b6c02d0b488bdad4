// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/climbmap/internal/models"
)

// Health handles health check requests. It always answers 200: a degraded
// backend is reported, not propagated.
//
// @Summary Get service health
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	breaker := "unknown"
	if h.breaker != nil {
		breaker = h.breaker.State()
	}

	status := "healthy"
	if breaker != "closed" && breaker != "unknown" {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:         status,
		Version:        h.version,
		BackendBreaker: breaker,
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if h.manager != nil {
		health.Sessions = h.manager.SessionCount()
		health.Drafts = h.manager.DraftCount()
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if h.perfMon != nil && r.URL.Query().Get("verbose") == "true" {
		health.Endpoints = h.perfMon.Stats()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
