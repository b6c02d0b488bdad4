// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/mapview"
	"github.com/tomtom215/climbmap/internal/middleware"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
	ws "github.com/tomtom215/climbmap/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testOrigin    = "http://localhost:3000"
)

func testObservations() []models.Observation {
	return []models.Observation{
		{ID: 1, UserID: 10, Caption: "Summit", Latitude: 37.7749, Longitude: -122.4194, Views: 42},
		{ID: 2, UserID: 20, Caption: "Ridge", Latitude: 40.0150, Longitude: -105.2705, Views: 18},
		{ID: 3, UserID: 10, Caption: "Valley", Latitude: 38.5816, Longitude: -121.4944, Views: 67},
	}
}

// stubListing serves a fixed listing and records how it was asked.
type stubListing struct {
	mu        sync.Mutex
	listing   backend.Listing
	lastOpts  backend.ListOptions
	loads     int
	refreshes int
}

func (s *stubListing) Load(_ context.Context, opts backend.ListOptions) backend.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	s.lastOpts = opts
	return s.copyListing()
}

func (s *stubListing) Refresh(_ context.Context, opts backend.ListOptions) backend.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	s.lastOpts = opts
	return s.copyListing()
}

func (s *stubListing) Invalidate() {}

func (s *stubListing) copyListing() backend.Listing {
	l := s.listing
	l.Observations = models.CloneObservations(s.listing.Observations)
	return l
}

func (s *stubListing) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

type stubViews struct{}

func (stubViews) IncrementView(_ context.Context, _ string, id, _ int64) (*models.Observation, error) {
	for _, o := range testObservations() {
		if o.ID == id {
			o.Views++
			return &o, nil
		}
	}
	return nil, &backend.ResponseError{Op: backend.OpIncrementView, StatusCode: http.StatusNotFound}
}

// stubCreator records the token and request of the last create call.
type stubCreator struct {
	mu    sync.Mutex
	err   error
	token string
	req   *backend.CreateRequest
}

func (s *stubCreator) CreateObservation(_ context.Context, token string, req *backend.CreateRequest) (*models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Observation{
		ID:        500,
		UserID:    10,
		Caption:   req.Caption,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		ImageURLs: []string{"https://cdn.example.com/500-0.jpg"},
	}, nil
}

func (s *stubCreator) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type stubBreaker string

func (b stubBreaker) State() string { return string(b) }

type testEnv struct {
	handler *Handler
	router  http.Handler
	manager *mapview.Manager
	listing *stubListing
	creator *stubCreator
	hub     *ws.Hub
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	listing := &stubListing{listing: backend.Listing{
		Observations: testObservations(),
		Source:       backend.SourceLive,
	}}
	tracker := spatial.NewTracker(spatial.TrackerConfig{
		DefaultCenter: models.LngLat{Lng: -98.5795, Lat: 39.8283},
		DefaultZoom:   4,
		SettleDelay:   5 * time.Millisecond,
	})
	selector := spatial.Selector{Threshold: spatial.MinZoomLevel, GridSize: spatial.DefaultGridSize}

	hub := ws.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		_ = hub.RunWithContext(hubCtx)
	}()
	t.Cleanup(func() {
		stopHub()
		<-hubDone
	})

	store := location.NewMemoryPreviewStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	creator := &stubCreator{}
	manager := mapview.NewManager(mapview.ManagerConfig{
		IdleTimeout:  time.Hour,
		ReapInterval: time.Hour,
		MaxSessions:  5,
		MaxDrafts:    5,
	}, mapview.Deps{
		Listing:   listing,
		Views:     stubViews{},
		Tracker:   tracker,
		Selector:  selector,
		Publisher: hub,
	}, location.Options{Store: store}, creator)
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = manager.RunWithContext(ctx)
	})

	cfg := &config.Config{
		Security: config.SecurityConfig{
			CORSOrigins:       []string{testOrigin},
			RateLimitDisabled: true,
			JWTSecret:         testJWTSecret,
		},
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error: %v", err)
	}

	handler := NewHandler(HandlerDeps{
		Manager:  manager,
		Listing:  listing,
		Breaker:  stubBreaker("closed"),
		Hub:      hub,
		Tracker:  tracker,
		Selector: selector,
		PerfMon:  middleware.NewPerformanceMonitor(100, time.Second),
		Config:   cfg,
		Version:  "test",
	})
	router := NewRouter(handler, auth.NewMiddleware(jwtManager), NewChiMiddleware(NewChiMiddlewareConfig(&cfg.Security)))

	return &testEnv{
		handler: handler,
		router:  router.SetupChi(),
		manager: manager,
		listing: listing,
		creator: creator,
		hub:     hub,
		jwt:     jwtManager,
	}
}

func (e *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID, "climber", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	return token
}

// do sends a request through the full router. body may be nil, a string or
// any value that is marshaled to JSON.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors models.APIResponse with Data left raw for typed decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("status = %q, error = %+v", env.Status, env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
	return env
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status code = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	assertStatus(t, rec, status)
	env := decodeEnvelope(t, rec)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
