// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/mapview"
	"github.com/tomtom215/climbmap/internal/middleware"
	"github.com/tomtom215/climbmap/internal/spatial"
	ws "github.com/tomtom215/climbmap/internal/websocket"
)

// ListingProvider serves the observation listing with placeholder fallback.
type ListingProvider interface {
	Load(ctx context.Context, opts backend.ListOptions) backend.Listing
}

// BreakerStater reports the backend circuit breaker state for health checks.
type BreakerStater interface {
	State() string
}

// HandlerDeps are the collaborators of a Handler. Hub, Breaker and PerfMon
// are optional.
type HandlerDeps struct {
	Manager     *mapview.Manager
	Listing     ListingProvider
	Breaker     BreakerStater
	Hub         *ws.Hub
	Tracker     *spatial.Tracker
	Selector    spatial.Selector
	PerfMon     *middleware.PerformanceMonitor
	Config      *config.Config
	ListOptions backend.ListOptions
	Version     string
}

// Handler handles HTTP requests for all endpoints.
type Handler struct {
	manager     *mapview.Manager
	listing     ListingProvider
	breaker     BreakerStater
	wsHub       *ws.Hub
	tracker     *spatial.Tracker
	selector    spatial.Selector
	perfMon     *middleware.PerformanceMonitor
	config      *config.Config
	intake      location.Intake
	listOptions backend.ListOptions
	version     string
	startTime   time.Time
}

// NewHandler creates a new Handler.
func NewHandler(deps HandlerDeps) *Handler {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = spatial.NewTracker(spatial.DefaultTrackerConfig())
	}
	var upload *config.UploadConfig
	if deps.Config != nil {
		upload = &deps.Config.Upload
	}
	return &Handler{
		manager:     deps.Manager,
		listing:     deps.Listing,
		breaker:     deps.Breaker,
		wsHub:       deps.Hub,
		tracker:     tracker,
		selector:    deps.Selector,
		perfMon:     deps.PerfMon,
		config:      deps.Config,
		intake:      location.NewIntake(upload),
		listOptions: deps.ListOptions,
		version:     deps.Version,
		startTime:   time.Now(),
	}
}

// getUpgrader returns a WebSocket upgrader that enforces the CORS origin list.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin allows only configured origins. A missing Origin header
// is rejected: browsers always send one.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Str("remote_addr", r.RemoteAddr).Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}
