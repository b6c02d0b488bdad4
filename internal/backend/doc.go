// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package backend is the HTTP client for the observation CRUD service.

Endpoints (relative to BACKEND_URL):

	GET  /observations/?skip=&limit=   list observations
	POST /observations/upload          multipart create (Bearer token required)
	POST /observations/{id}/view       increment views {"viewer_user_id": N}

# Resilience

  - Outbound token bucket (golang.org/x/time/rate) shared by all calls
  - Circuit breaker (sony/gobreaker/v2) around every call; 4xx responses do
    not count as failures
  - HTTP 429 on the listing is retried with Retry-After aware backoff;
    create and increment are never retried

# Errors

Every failure is one of two types so callers can pick the right message:

  - *ConnectivityError: transport failure, timeout, cancelled wait or open breaker
  - *ResponseError: non-2xx status; Detail carries the server's own message

ListingLoader turns listing failures into the placeholder dataset plus a
notice, so the map always has something to draw.
*/
package backend
