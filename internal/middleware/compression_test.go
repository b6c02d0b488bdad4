// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveCompressed(h http.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	Compression(h).ServeHTTP(rec, req)
	return rec
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func TestCompression_JSONIsGzipped(t *testing.T) {
	body := `{"status":"success","data":` + strings.Repeat(`"x",`, 200) + `"y"}`
	rec := serveCompressed(jsonHandler(body), map[string]string{"Accept-Encoding": "gzip, deflate"})

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	got, _ := io.ReadAll(gr)
	if string(got) != body {
		t.Error("decompressed body differs from original")
	}
}

func TestCompression_Passthrough(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		headers map[string]string
	}{
		{
			name:    "client without gzip",
			handler: jsonHandler(`{"a":1}`),
			headers: map[string]string{},
		},
		{
			name:    "websocket upgrade",
			handler: jsonHandler(`{"a":1}`),
			headers: map[string]string{"Accept-Encoding": "gzip", "Upgrade": "websocket"},
		},
		{
			name: "jpeg preview",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
			},
			headers: map[string]string{"Accept-Encoding": "gzip"},
		},
		{
			name: "no content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNoContent)
			},
			headers: map[string]string{"Accept-Encoding": "gzip"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCompressed(tt.handler, tt.headers)
			if enc := rec.Header().Get("Content-Encoding"); enc != "" {
				t.Errorf("Content-Encoding = %q, want none", enc)
			}
		})
	}
}

func TestCompression_ImplicitHeaderSniffsText(t *testing.T) {
	rec := serveCompressed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text body"))
	}, map[string]string{"Accept-Encoding": "gzip"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Error("sniffed text/plain body should be compressed")
	}
}
