// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package config provides centralized configuration management for Climbmap.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is validated once and is
read-only afterwards.

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeouts)
  - BackendConfig: Observation backend URL, timeouts, outbound rate limits
  - MapConfig: Default viewport, settle delay, zoom threshold, grid size
  - SessionConfig: Map session and draft lifetimes and limits
  - UploadConfig: Image count, image size and caption limits
  - PreviewConfig: Preview rendering and store selection (memory or redis)
  - SecurityConfig: CORS, inbound rate limits, bearer token secret
  - LoggingConfig: Level, format, caller info

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	client := backend.NewClient(&cfg.Backend)

# Environment Variables

Only mapped variables are read (see envMappings). Common ones:

	BACKEND_URL=http://localhost:8000
	HTTP_PORT=3857
	MAP_MIN_ZOOM_LEVEL=6
	PREVIEW_STORE=redis
	REDIS_ADDR=localhost:6379
	JWT_SECRET=...
	CORS_ORIGINS=https://a.example,https://b.example
	LOG_LEVEL=debug
*/
package config
