// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/mapview"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "form validation",
			err:        &location.ValidationError{Field: "caption", Message: "Caption is required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "Caption is required",
		},
		{
			name:       "wrapped session not found",
			err:        fmt.Errorf("lookup: %w", mapview.ErrSessionNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{"session closed", mapview.ErrSessionClosed, http.StatusNotFound, "NOT_FOUND", ""},
		{"draft not found", mapview.ErrDraftNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"draft closed", location.ErrDraftClosed, http.StatusNotFound, "NOT_FOUND", ""},
		{"image not found", location.ErrImageNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"preview not found", location.ErrPreviewNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"observation not found", mapview.ErrObservationNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"too many sessions", mapview.ErrTooManySessions, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
		{"too many drafts", mapview.ErrTooManyDrafts, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
		{
			name:       "backend rejection",
			err:        &backend.ResponseError{Op: backend.OpCreate, StatusCode: 422, Detail: "Latitude must be between -90 and 90"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "EXTERNAL_SERVICE_FAILED",
			wantMsg:    "Latitude must be between -90 and 90",
		},
		{
			name:       "backend rejection without detail",
			err:        &backend.ResponseError{Op: backend.OpCreate, StatusCode: 500},
			wantStatus: http.StatusBadGateway,
			wantCode:   "EXTERNAL_SERVICE_FAILED",
			wantMsg:    "Observation service error (HTTP 500 Internal Server Error)",
		},
		{
			name:       "backend refused token",
			err:        &backend.ResponseError{Op: backend.OpCreate, StatusCode: 401, Detail: "Could not validate credentials"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantMsg:    "Could not validate credentials",
		},
		{
			name:       "backend unreachable",
			err:        &backend.ConnectivityError{Op: backend.OpCreate, Err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := classifyError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}
