// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package main is the entry point for the Climbmap server.

Climbmap serves interactive maps of geotagged climbing observations. Each map
view is a server-side session that tracks the visible viewport, reads the
observation listing from the backend CRUD service, and renders it either as
grid clusters (zoomed out) or individual markers (zoomed in). A second flow
stages images for a new observation, resolves its location from EXIF GPS data
or a manual pick, and uploads it to the backend.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("climbmap")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (snapshot push)
	│   └── Session Manager (idle reaping, shutdown)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Backend: HTTP client behind a circuit breaker, listing loader with cache
 4. Previews: in-memory or Redis preview store, JPEG renderer
 5. Authentication: optional HMAC bearer token verification
 6. Map pipeline: viewport tracker, render mode selector, session manager
 7. Supervisor Tree: hub, manager and HTTP server
 8. HTTP Server: chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 (environment variables > config file > defaults):

	HTTP_PORT=3857               # HTTP listen port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	BACKEND_URL=http://localhost:8000
	JWT_SECRET=<secret>          # enables viewer identity for view counts
	PREVIEW_STORE=memory         # memory or redis
	REDIS_ADDR=localhost:6379

See internal/config for the complete list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server first (with a bounded graceful shutdown), then the session manager
closes every session and draft, releasing their previews.

# Build

	go build -ldflags "-X main.version=1.0.0" -o climbmap ./cmd/server
*/
package main
