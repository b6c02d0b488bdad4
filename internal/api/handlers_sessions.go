// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/mapview"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
	ws "github.com/tomtom215/climbmap/internal/websocket"
)

// DefaultViewport is where a new map starts.
type DefaultViewport struct {
	Center models.LngLat `json:"center"`
	Zoom   float64       `json:"zoom"`
}

// SessionCreated is returned when a map session opens.
type SessionCreated struct {
	SessionID       string           `json:"session_id"`
	DefaultViewport DefaultViewport  `json:"default_viewport"`
	Snapshot        mapview.Snapshot `json:"snapshot"`
}

// sessionFromRequest resolves the {id} path parameter. On failure the
// response has been written and the session is nil.
func (h *Handler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*mapview.Session, context.Context) {
	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithSessionID(r.Context(), id)
	sess, err := h.manager.Session(id)
	if err != nil {
		respondDomainError(w, err)
		return nil, ctx
	}
	return sess, ctx
}

// CreateSession opens a map session.
//
// @Summary Open a map session
// @Tags Sessions
// @Produce json
// @Success 201 {object} models.APIResponse{data=SessionCreated}
// @Failure 503 {object} models.APIResponse "Server at capacity"
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sess, err := h.manager.CreateSession()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), sess.ID())
	snap, err := sess.Snapshot(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	center, zoom := h.tracker.DefaultViewport()
	logging.Ctx(ctx).Debug().Msg("Map session opened")

	respondSuccess(w, http.StatusCreated, SessionCreated{
		SessionID:       sess.ID(),
		DefaultViewport: DefaultViewport{Center: center, Zoom: zoom},
		Snapshot:        snap,
	}, start)
}

// GetSession returns the current snapshot of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	snap, err := sess.Snapshot(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// CloseSession ends a session. Its WebSocket clients receive no further snapshots.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.CloseSession(id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionViewport applies a map load or moveend event.
//
// @Summary Report a viewport event
// @Tags Sessions
// @Accept json
// @Produce json
// @Param body body ViewportRequest true "Viewport event"
// @Success 200 {object} models.APIResponse{data=mapview.Snapshot}
// @Failure 400 {object} models.APIResponse "Invalid viewport"
// @Failure 404 {object} models.APIResponse "Session not found"
// @Router /sessions/{id}/viewport [post]
func (h *Handler) SessionViewport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	var req ViewportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.SouthWest.Lat > req.NorthEast.Lat {
		respondAPIError(w, http.StatusBadRequest, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: "south_west must be south of north_east",
			Details: map[string]interface{}{"field": "south_west"},
		}, nil)
		return
	}

	vp := mapview.NewViewport(req.SouthWest.toModel(), req.NorthEast.toModel(), req.Zoom)

	var (
		snap mapview.Snapshot
		err  error
	)
	if req.Event == ViewportEventLoad {
		snap, err = sess.Load(ctx, vp)
	} else {
		snap, err = sess.Move(ctx, vp)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// SessionSelect opens the detail panel for an observation and records a view
// for a known viewer.
func (h *Handler) SessionSelect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	var req SelectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := sess.Select(ctx, auth.ViewerFromContext(r.Context()), req.ObservationID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// SessionDeselect closes the detail panel.
func (h *Handler) SessionDeselect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	snap, err := sess.Deselect(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// SessionRefresh re-fetches the listing, bypassing the cache.
func (h *Handler) SessionRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	snap, err := sess.Refresh(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// SessionWebSocket upgrades to a WebSocket that receives every snapshot of
// the session. The current snapshot is sent immediately.
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	sess, ctx := h.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, sess.ID())
	h.wsHub.Register <- client
	client.Start()

	snap, err := sess.Snapshot(ctx)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Session closed before first push")
		return
	}
	h.wsHub.PublishToSession(sess.ID(), mapview.MessageTypeSnapshot, snap)
}
