// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/climbmap/internal/models"
)

// fakeLister returns canned results and counts calls
type fakeLister struct {
	mu    sync.Mutex
	calls int
	obs   []models.Observation
	err   error
}

func (f *fakeLister) ListObservations(context.Context, ListOptions) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.CloneObservations(f.obs), nil
}

func (f *fakeLister) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestLoader(t *testing.T, api Lister, ttl time.Duration) *ListingLoader {
	t.Helper()
	l := NewListingLoader(api, ttl)
	t.Cleanup(l.Close)
	return l
}

func TestListingLoader_Live(t *testing.T) {
	api := &fakeLister{obs: []models.Observation{{ID: 1, Caption: "a"}, {ID: 2, Caption: "b"}}}
	l := newTestLoader(t, api, time.Minute)

	got := l.Load(context.Background(), ListOptions{})
	if got.Source != SourceLive || got.Notice != "" {
		t.Errorf("Source/Notice = %q/%q, want live with no notice", got.Source, got.Notice)
	}
	if len(got.Observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(got.Observations))
	}
}

func TestListingLoader_ConnectivityFallsBackToPlaceholder(t *testing.T) {
	api := &fakeLister{err: &ConnectivityError{Op: OpList, Err: errors.New("connection refused")}}
	l := newTestLoader(t, api, time.Minute)

	got := l.Load(context.Background(), ListOptions{})
	if got.Source != SourcePlaceholder {
		t.Fatalf("Source = %q, want placeholder", got.Source)
	}
	if got.Notice != OfflineNotice {
		t.Errorf("Notice = %q, want offline notice", got.Notice)
	}
	if len(got.Observations) != 5 {
		t.Errorf("placeholder size = %d, want 5", len(got.Observations))
	}
}

func TestListingLoader_ResponseErrorUsesServerDetail(t *testing.T) {
	api := &fakeLister{err: &ResponseError{Op: OpList, StatusCode: 503, Detail: "Database is under maintenance"}}
	l := newTestLoader(t, api, time.Minute)

	got := l.Load(context.Background(), ListOptions{})
	if got.Source != SourcePlaceholder {
		t.Fatalf("Source = %q, want placeholder", got.Source)
	}
	if got.Notice != "Database is under maintenance" {
		t.Errorf("Notice = %q, want server detail verbatim", got.Notice)
	}
}

func TestListingLoader_CachesLiveOnly(t *testing.T) {
	api := &fakeLister{obs: []models.Observation{{ID: 1}}}
	l := newTestLoader(t, api, time.Minute)

	l.Load(context.Background(), ListOptions{})
	l.Load(context.Background(), ListOptions{})
	if api.Calls() != 1 {
		t.Errorf("calls = %d, want 1 (second load served from cache)", api.Calls())
	}

	l.Load(context.Background(), ListOptions{Limit: 10})
	if api.Calls() != 2 {
		t.Errorf("calls = %d, want 2 (different options, different key)", api.Calls())
	}

	l.Refresh(context.Background(), ListOptions{})
	if api.Calls() != 3 {
		t.Errorf("calls = %d, want 3 (refresh bypasses cache)", api.Calls())
	}

	l.Invalidate()
	l.Load(context.Background(), ListOptions{})
	if api.Calls() != 4 {
		t.Errorf("calls = %d, want 4 after invalidate", api.Calls())
	}

	failing := &fakeLister{err: &ConnectivityError{Op: OpList, Err: errors.New("down")}}
	fl := newTestLoader(t, failing, time.Minute)
	fl.Load(context.Background(), ListOptions{})
	fl.Load(context.Background(), ListOptions{})
	if failing.Calls() != 2 {
		t.Errorf("placeholder results must not be cached: calls = %d, want 2", failing.Calls())
	}
}

func TestListingLoader_ReturnsIndependentCopies(t *testing.T) {
	api := &fakeLister{obs: []models.Observation{{ID: 1, Views: 5, ImageURLs: []string{"a"}}}}
	l := newTestLoader(t, api, time.Minute)

	first := l.Load(context.Background(), ListOptions{})
	first.Observations[0].Views = 999
	first.Observations[0].ImageURLs[0] = "mutated"

	second := l.Load(context.Background(), ListOptions{})
	if second.Observations[0].Views != 5 || second.Observations[0].ImageURLs[0] != "a" {
		t.Errorf("cached listing was mutated through a caller copy: %+v", second.Observations[0])
	}
}
