// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package supervisor builds the suture v4 process tree for Climbmap.

	climbmap (root)
	├── messaging-layer
	│   ├── websocket-hub
	│   └── session-manager
	└── api-layer
	    └── http-server

The messaging layer owns long-lived state (push clients, map sessions and
creation drafts); the API layer serves HTTP. A crash in one layer restarts
only that layer's services. Supervisor events are logged through sutureslog
into the zerolog-backed slog logger from internal/logging.

Shutdown: cancelling the context passed to Serve stops the API layer and the
messaging layer; each service gets ShutdownTimeout to return.
*/
package supervisor
