// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/observations", "200"))
	RecordAPIRequest("GET", "/api/v1/observations", "200", 12*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/observations", "200"))

	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("api_active_requests = %v, want %v after balanced inc/dec", got, start)
	}
}

func TestRecordBackendCall(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		kind      string
		wantErrs  float64
	}{
		{"success", "list", "", 0},
		{"connectivity failure", "create", "connectivity", 1},
		{"response failure", "increment_view", "response", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.kind != "" {
				before = testutil.ToFloat64(BackendRequestErrors.WithLabelValues(tt.operation, tt.kind))
			}
			RecordBackendCall(tt.operation, 5*time.Millisecond, tt.kind)
			if tt.kind == "" {
				return
			}
			after := testutil.ToFloat64(BackendRequestErrors.WithLabelValues(tt.operation, tt.kind))
			if after-before != tt.wantErrs {
				t.Errorf("backend_request_errors_total delta = %v, want %v", after-before, tt.wantErrs)
			}
		})
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("listing"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("listing"))

	RecordCacheAccess("listing", true)
	RecordCacheAccess("listing", false)
	RecordCacheAccess("listing", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("listing")) - hits; got != 1 {
		t.Errorf("cache hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("listing")) - misses; got != 2 {
		t.Errorf("cache misses delta = %v, want 2", got)
	}
}

func TestRecordRender(t *testing.T) {
	RecordRender("clustered", time.Millisecond)
	if n := testutil.CollectAndCount(MapRenderDuration); n == 0 {
		t.Error("expected map_render_duration_seconds to have observations")
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test")
	if n := testutil.CollectAndCount(AppInfo); n == 0 {
		t.Error("expected app_info to be set")
	}
}
