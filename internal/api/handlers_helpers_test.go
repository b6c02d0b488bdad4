// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climbmap/internal/models"
)

// ===================================================================================================
// generateETag Tests
// ===================================================================================================

func TestGenerateETag(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("hello world"),
		[]byte(`{"key": "value", "count": 123}`),
		{0x00, 0xFF, 0x55, 0xAA},
	}

	for _, in := range inputs {
		etag := generateETag(in)
		if len(etag) < 3 || etag[0] != '"' || etag[len(etag)-1] != '"' {
			t.Errorf("generateETag(%q) = %s, want a quoted tag", in, etag)
		}
		if etag != generateETag(in) {
			t.Errorf("generateETag(%q) is not deterministic", in)
		}
	}

	if generateETag([]byte("hello")) == generateETag([]byte("world")) {
		t.Error("different inputs produced the same ETag")
	}
}

// ===================================================================================================
// sanitizeLogValue Tests
// ===================================================================================================

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"line1\nline2", `line1\x0aline2`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"unicode ✓", "unicode ✓"},
	}

	for _, tt := range tests {
		if got := sanitizeLogValue(tt.input); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ===================================================================================================
// Response Tests
// ===================================================================================================

func TestRespondJSON_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	respondSuccess(rec, http.StatusOK, map[string]int{"n": 1}, time.Now())

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	for header, want := range map[string]string{
		"Content-Type":  "application/json",
		"Cache-Control": "no-store",
		"Vary":          "Accept-Encoding",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag missing")
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Error != nil {
		t.Errorf("envelope = %+v", resp)
	}
	if resp.Metadata.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusNotFound, "NOT_FOUND", "Draft not found", errors.New("detail\nfor logs"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Error == nil {
		t.Fatalf("envelope = %+v", resp)
	}
	if resp.Error.Code != "NOT_FOUND" || resp.Error.Message != "Draft not found" {
		t.Errorf("error = %+v", resp.Error)
	}
	if strings.Contains(rec.Body.String(), "for logs") {
		t.Error("internal error detail leaked into the response")
	}
}

// ===================================================================================================
// Parameter Parsing Tests
// ===================================================================================================

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 7},
		{"limit=25", 25},
		{"limit=-3", -3},
		{"limit=abc", 7},
		{"limit=2.5", 7},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := getIntParam(req, "limit", 7); got != tt.want {
			t.Errorf("getIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestGetFloatParam(t *testing.T) {
	tests := []struct {
		query  string
		want   float64
		wantOK bool
	}{
		{"", 0, false},
		{"zoom=", 0, false},
		{"zoom=6", 6, true},
		{"zoom=-122.4194", -122.4194, true},
		{"zoom=%206.5%20", 6.5, true},
		{"zoom=six", 0, false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		got, ok := getFloatParam(req, "zoom")
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("getFloatParam(%q) = %v,%v want %v,%v", tt.query, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var v SelectRequest
		if err := decodeJSON(httptest.NewRecorder(), req, &v); !errors.Is(err, errEmptyBody) {
			t.Errorf("err = %v, want errEmptyBody", err)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"caption":"` + strings.Repeat("a", maxJSONBody) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var v SubmitRequest
		var tooLarge *http.MaxBytesError
		if err := decodeJSON(httptest.NewRecorder(), req, &v); !errors.As(err, &tooLarge) {
			t.Errorf("err = %v, want MaxBytesError", err)
		}
	})

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"observation_id": 12}`))
		var v SelectRequest
		if err := decodeJSON(httptest.NewRecorder(), req, &v); err != nil {
			t.Fatalf("decodeJSON() error: %v", err)
		}
		if v.ObservationID != 12 {
			t.Errorf("observation_id = %d, want 12", v.ObservationID)
		}
	})
}

func TestValidateRequest(t *testing.T) {
	if apiErr := validateRequest(&SelectRequest{ObservationID: 3}); apiErr != nil {
		t.Errorf("valid request rejected: %+v", apiErr)
	}

	apiErr := validateRequest(&SelectRequest{})
	if apiErr == nil {
		t.Fatal("missing observation_id accepted")
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "observation_id" {
		t.Errorf("details = %+v, want field observation_id", apiErr.Details)
	}
}
