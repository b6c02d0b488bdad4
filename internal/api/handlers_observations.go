// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
)

// ClusterResponse is one stateless render pass.
type ClusterResponse struct {
	spatial.Render
	Bounds models.Bounds `json:"bounds"`
	Total  int           `json:"total_observations"`
}

// ListObservations proxies the backend listing. When the backend is
// unavailable the placeholder dataset is served with a notice; the request
// itself never fails for backend reasons.
//
// @Summary List observations
// @Tags Observations
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} models.APIResponse{data=[]models.Observation}
// @Router /observations [get]
func (h *Handler) ListObservations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := ListRequest{
		Skip:  getIntParam(r, "skip", h.listOptions.Skip),
		Limit: getIntParam(r, "limit", h.defaultLimit()),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	listing := h.listing.Load(r.Context(), backend.ListOptions{Skip: req.Skip, Limit: req.Limit})

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   listing.Observations,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Source:      string(listing.Source),
			Notice:      listing.Notice,
		},
	})
}

// Clusters runs one filter and render pass over the listing for the given
// bounds without creating a session.
//
// @Summary Render a viewport
// @Tags Observations
// @Produce json
// @Param west query number true "Western longitude"
// @Param south query number true "Southern latitude"
// @Param east query number true "Eastern longitude"
// @Param north query number true "Northern latitude"
// @Param zoom query number true "Map zoom"
// @Success 200 {object} models.APIResponse{data=ClusterResponse}
// @Failure 400 {object} models.APIResponse "Invalid bounds"
// @Router /observations/clusters [get]
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ClustersRequest
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"west", &req.West},
		{"south", &req.South},
		{"east", &req.East},
		{"north", &req.North},
		{"zoom", &req.Zoom},
	} {
		v, ok := getFloatParam(r, p.name)
		if !ok {
			respondAPIError(w, http.StatusBadRequest, &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: p.name + " must be a number",
				Details: map[string]interface{}{"field": p.name},
			}, nil)
			return
		}
		*p.dst = v
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	listing := h.listing.Load(r.Context(), h.listOptions)
	b := req.bounds()
	render := h.selector.Apply(listing.Observations, b)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: ClusterResponse{
			Render: render,
			Bounds: b,
			Total:  len(listing.Observations),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Source:      string(listing.Source),
			Notice:      listing.Notice,
		},
	})
}

func (h *Handler) defaultLimit() int {
	if h.listOptions.Limit > 0 {
		return h.listOptions.Limit
	}
	return backend.DefaultListLimit
}
