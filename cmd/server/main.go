// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/climbmap/internal/api"
	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/mapview"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/middleware"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
	"github.com/tomtom215/climbmap/internal/supervisor"
	"github.com/tomtom215/climbmap/internal/supervisor/services"
	ws "github.com/tomtom215/climbmap/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("backend", cfg.Backend.BaseURL).
		Msg("Starting Climbmap")

	metrics.SetAppInfo(version)

	// === BACKEND ===
	backendClient := backend.NewCircuitBreakerClient(&cfg.Backend)
	listing := backend.NewListingLoader(backendClient, cfg.Backend.ListingCacheTTL)
	defer listing.Close()
	logging.Info().Dur("listing_cache_ttl", cfg.Backend.ListingCacheTTL).Msg("Backend client initialized")

	// === PREVIEWS ===
	previews, err := location.NewPreviewStore(&cfg.Preview)
	if err != nil {
		logging.Fatal().Err(err).Str("store", cfg.Preview.Store).Msg("Failed to initialize preview store")
	}
	defer func() {
		if err := previews.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preview store")
		}
	}()
	logging.Info().Str("store", cfg.Preview.Store).Msg("Preview store initialized")

	draftOpts := location.Options{
		Intake:   location.NewIntake(&cfg.Upload),
		Renderer: location.NewRenderer(&cfg.Preview),
		Store:    previews,
	}

	// === AUTHENTICATION ===
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		if !errors.Is(err, auth.ErrVerificationDisabled) {
			logging.Fatal().Err(err).Msg("Failed to initialize token verification")
		}
		logging.Warn().Msg("JWT_SECRET not set: viewers are anonymous and view counts are not recorded")
		jwtManager = nil
	}

	// === MAP PIPELINE ===
	wsHub := ws.NewHub()

	tracker := spatial.NewTracker(spatial.TrackerConfig{
		DefaultCenter: models.LngLat{Lng: cfg.Map.DefaultCenterLng, Lat: cfg.Map.DefaultCenterLat},
		DefaultZoom:   cfg.Map.DefaultZoom,
		SettleDelay:   cfg.Map.SettleDelay,
	})
	selector := spatial.Selector{
		Threshold: cfg.Map.MinZoomLevel,
		GridSize:  cfg.Map.GridSize,
	}

	manager := mapview.NewManager(
		mapview.NewManagerConfig(&cfg.Session),
		mapview.Deps{
			Listing:   listing,
			Views:     backendClient,
			Tracker:   tracker,
			Selector:  selector,
			Publisher: wsHub,
		},
		draftOpts,
		backendClient,
	)
	logging.Info().
		Int("max_sessions", cfg.Session.MaxSessions).
		Int("max_drafts", cfg.Session.MaxDrafts).
		Float64("min_zoom_level", cfg.Map.MinZoomLevel).
		Msg("Session manager initialized")

	// === HTTP ===
	perfMon := middleware.NewPerformanceMonitor(1000, time.Second)

	handler := api.NewHandler(api.HandlerDeps{
		Manager:  manager,
		Listing:  listing,
		Breaker:  backendClient,
		Hub:      wsHub,
		Tracker:  tracker,
		Selector: selector,
		PerfMon:  perfMon,
		Config:   cfg,
		Version:  version,
	})
	router := api.NewRouter(
		handler,
		auth.NewMiddleware(jwtManager),
		api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewSessionManagerService(manager))
	logging.Info().Msg("WebSocket hub and session manager added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START ===
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree started")

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
		// Wait for the tree to finish stopping its services.
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree returned error during shutdown")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
		}
		stop()
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
