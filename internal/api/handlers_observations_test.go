// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
)

func TestListObservations(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/observations?skip=1&limit=2", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	var obs []models.Observation
	meta := decodeData(t, rec, &obs).Metadata

	if len(obs) != 3 {
		t.Errorf("observations = %d, want 3", len(obs))
	}
	if meta.Source != string(backend.SourceLive) {
		t.Errorf("source = %q, want live", meta.Source)
	}
	if meta.Notice != "" {
		t.Errorf("notice = %q, want empty", meta.Notice)
	}
	if env.listing.lastOpts != (backend.ListOptions{Skip: 1, Limit: 2}) {
		t.Errorf("list options = %+v, want skip=1 limit=2", env.listing.lastOpts)
	}
}

func TestListObservations_DefaultPaging(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/observations", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	if env.listing.lastOpts != (backend.ListOptions{Skip: 0, Limit: backend.DefaultListLimit}) {
		t.Errorf("list options = %+v", env.listing.lastOpts)
	}
}

func TestListObservations_Placeholder(t *testing.T) {
	env := newTestEnv(t)
	env.listing.listing = backend.Listing{
		Observations: models.PlaceholderObservations(),
		Source:       backend.SourcePlaceholder,
		Notice:       backend.OfflineNotice,
	}

	rec := env.do(t, http.MethodGet, "/api/v1/observations", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	var obs []models.Observation
	meta := decodeData(t, rec, &obs).Metadata

	if len(obs) != 5 {
		t.Errorf("observations = %d, want 5 placeholders", len(obs))
	}
	if meta.Source != string(backend.SourcePlaceholder) {
		t.Errorf("source = %q, want placeholder", meta.Source)
	}
	if meta.Notice != backend.OfflineNotice {
		t.Errorf("notice = %q", meta.Notice)
	}
}

func TestListObservations_InvalidPaging(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{"?limit=0", "?limit=5000", "?skip=-1"} {
		t.Run(query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/observations"+query, nil, nil)
			assertErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
		})
	}
}

func TestClusters(t *testing.T) {
	env := newTestEnv(t)

	t.Run("clustered below threshold", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/observations/clusters?west=-130&south=25&east=-60&north=50&zoom=3", nil, nil)
		assertStatus(t, rec, http.StatusOK)

		var resp ClusterResponse
		decodeData(t, rec, &resp)

		if resp.Mode != spatial.ModeClustered {
			t.Errorf("mode = %q, want clustered", resp.Mode)
		}
		total := 0
		for _, c := range resp.Clusters {
			total += c.Count
		}
		if total != 3 {
			t.Errorf("clustered count = %d, want 3", total)
		}
		if len(resp.Individuals) != 0 {
			t.Errorf("individuals = %d, want 0", len(resp.Individuals))
		}
		if resp.Total != 3 {
			t.Errorf("total = %d, want 3", resp.Total)
		}
	})

	t.Run("individual at threshold", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/observations/clusters?west=-125&south=36&east=-120&north=39&zoom=6", nil, nil)
		assertStatus(t, rec, http.StatusOK)

		var resp ClusterResponse
		decodeData(t, rec, &resp)

		if resp.Mode != spatial.ModeIndividual {
			t.Errorf("mode = %q, want individual", resp.Mode)
		}
		if len(resp.Individuals) != 2 {
			t.Errorf("individuals = %d, want 2 (Summit and Valley)", len(resp.Individuals))
		}
		if resp.Bounds.MinLng != -125 || resp.Bounds.MaxLat != 39 {
			t.Errorf("bounds = %+v", resp.Bounds)
		}
	})
}

func TestClusters_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing zoom", "?west=-1&south=-1&east=1&north=1"},
		{"not a number", "?west=abc&south=-1&east=1&north=1&zoom=3"},
		{"latitude out of range", "?west=-1&south=-91&east=1&north=1&zoom=3"},
		{"north below south", "?west=-1&south=10&east=1&north=5&zoom=3"},
		{"east below west", "?west=10&south=-1&east=5&north=1&zoom=3"},
		{"zoom out of range", "?west=-1&south=-1&east=1&north=1&zoom=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/observations/clusters"+tt.query, nil, nil)
			assertErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
		})
	}
}
