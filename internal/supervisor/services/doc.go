// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package services provides suture.Service wrappers for Climbmap components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error and names itself via fmt.Stringer for supervisor events.

  - HTTPServerService: ListenAndServe in a goroutine, Shutdown with a
    timeout on cancellation; http.ErrServerClosed is not a failure.
  - RunnerService: delegates to RunWithContext. Used for the WebSocket hub
    ("websocket-hub") and the map session manager ("session-manager").

Usage:

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewSessionManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

A service that returns an error (other than via context cancellation) is
restarted by its supervisor with backoff.
*/
package services
