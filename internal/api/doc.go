// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package api provides the HTTP surface of Climbmap.

The browser drives a map session through this package: it opens a session,
reports viewport events, selects observations and receives every resulting
snapshot over a WebSocket. Observation creation works the same way through a
draft that collects images, resolves a location and submits to the backend.

Routes:

	GET    /health                                       service health
	GET    /metrics                                      Prometheus metrics

	POST   /api/v1/sessions                              open a map session
	GET    /api/v1/sessions/{id}                         current snapshot
	DELETE /api/v1/sessions/{id}                         close the session
	POST   /api/v1/sessions/{id}/viewport                load / moveend event
	POST   /api/v1/sessions/{id}/select                  select an observation
	DELETE /api/v1/sessions/{id}/select                  close the detail panel
	POST   /api/v1/sessions/{id}/refresh                 re-fetch the listing
	GET    /api/v1/sessions/{id}/ws                      snapshot push

	GET    /api/v1/observations                          listing proxy
	GET    /api/v1/observations/clusters                 one-shot render pass

	POST   /api/v1/drafts                                open a creation draft
	GET    /api/v1/drafts/{id}                           draft state
	DELETE /api/v1/drafts/{id}                           discard
	POST   /api/v1/drafts/{id}/images                    stage images (multipart "images")
	DELETE /api/v1/drafts/{id}/images/{imageID}          remove a staged image
	GET    /api/v1/drafts/{id}/images/{imageID}/preview  JPEG preview
	POST   /api/v1/drafts/{id}/location                  manual location pick
	POST   /api/v1/drafts/{id}/submit                    create the observation (bearer token required)

Middleware Stack:

Global, in order: request id, real IP, panic recovery, CORS, Prometheus
metrics, performance sampling. The /api/v1 group adds per-IP rate limiting,
security headers, gzip compression and viewer identification from the
bearer token. Submission additionally requires a token.

Response Format:

Every JSON endpoint answers with models.APIResponse. Errors carry a stable
code (VALIDATION_ERROR, NOT_FOUND, UNAUTHORIZED, EXTERNAL_SERVICE_FAILED,
SERVICE_UNAVAILABLE, RATE_LIMITED, INTERNAL_ERROR) and a message fit for
display. Backend rejections are relayed with the backend's own detail text.
*/
package api
