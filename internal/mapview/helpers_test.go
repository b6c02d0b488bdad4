// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package mapview

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

func testObservations() []models.Observation {
	return []models.Observation{
		{ID: 1, UserID: 10, Caption: "Summit", Latitude: 37.7749, Longitude: -122.4194, Views: 42},
		{ID: 2, UserID: 20, Caption: "Ridge", Latitude: 40.0150, Longitude: -105.2705, Views: 18},
		{ID: 3, UserID: 10, Caption: "Valley", Latitude: 38.5816, Longitude: -121.4944, Views: 67},
	}
}

// westViewport covers every test observation at individual zoom.
func westViewport() Viewport {
	return NewViewport(models.LngLat{Lng: -125, Lat: 30}, models.LngLat{Lng: -100, Lat: 45}, 8)
}

type fakeListing struct {
	mu          sync.Mutex
	listing     backend.Listing
	loads       int
	refreshes   int
	invalidated int
}

func newFakeListing(obs []models.Observation) *fakeListing {
	return &fakeListing{listing: backend.Listing{Observations: obs, Source: backend.SourceLive}}
}

func (f *fakeListing) Load(context.Context, backend.ListOptions) backend.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.copyListing()
}

func (f *fakeListing) Refresh(context.Context, backend.ListOptions) backend.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.copyListing()
}

func (f *fakeListing) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func (f *fakeListing) set(l backend.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listing = l
}

func (f *fakeListing) copyListing() backend.Listing {
	l := f.listing
	l.Observations = models.CloneObservations(f.listing.Observations)
	return l
}

type viewCall struct {
	token    string
	id       int64
	viewerID int64
}

type fakeViews struct {
	mu      sync.Mutex
	calls   []viewCall
	gate    chan struct{}
	respond func(id int64) (*models.Observation, error)
}

func (f *fakeViews) IncrementView(_ context.Context, token string, id, viewerID int64) (*models.Observation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, viewCall{token: token, id: id, viewerID: viewerID})
	gate, respond := f.gate, f.respond
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return respond(id)
}

func (f *fakeViews) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// respondWithViews returns the matching test observation with views set.
func respondWithViews(views int64) func(int64) (*models.Observation, error) {
	return func(id int64) (*models.Observation, error) {
		for _, o := range testObservations() {
			if o.ID == id {
				o.Views = views
				return &o, nil
			}
		}
		return nil, &backend.ResponseError{Op: backend.OpIncrementView, StatusCode: 404, Detail: "Observation not found"}
	}
}

type published struct {
	sessionID   string
	messageType string
	snap        Snapshot
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) PublishToSession(sessionID, messageType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, _ := data.(Snapshot)
	p.msgs = append(p.msgs, published{sessionID: sessionID, messageType: messageType, snap: snap})
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDeps(listing *fakeListing, views *fakeViews, pub Publisher) Deps {
	return Deps{
		Listing: listing,
		Views:   views,
		Tracker: spatial.NewTracker(spatial.TrackerConfig{
			DefaultCenter: models.LngLat{Lng: -98.5795, Lat: 39.8283},
			DefaultZoom:   4,
			SettleDelay:   5 * time.Millisecond,
		}),
		Selector:  spatial.Selector{Threshold: spatial.MinZoomLevel, GridSize: spatial.DefaultGridSize},
		Publisher: pub,
	}
}

// startSession creates a session and waits for its initial listing.
func startSession(t *testing.T, deps Deps) *Session {
	t.Helper()
	s := newSession("session-1", deps)
	t.Cleanup(s.Close)
	settle(t, s)
	return s
}

// settle waits for background work to post its results, then returns the
// snapshot taken after they were applied.
func settle(t *testing.T, s *Session) Snapshot {
	t.Helper()
	s.inflight.Wait()
	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	return snap
}
