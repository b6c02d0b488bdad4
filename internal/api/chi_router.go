// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil auth middleware treats every viewer as
// anonymous and still forwards bearer tokens; a nil ChiMiddleware uses the
// defaults.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMw *ChiMiddleware) *Router {
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil)
	}
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: chiMw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflights
	r.Use(middleware.PrometheusMetrics)
	if router.handler.perfMon != nil {
		r.Use(router.handler.perfMon.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.With(router.chiMiddleware.RateLimitCustom(RateLimitHealth), APISecurityHeaders()).
		Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// API v1
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.auth.Identify)

		r.Route("/sessions", func(r chi.Router) {
			r.With(middleware.Compression).Post("/", router.handler.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				// The WebSocket route must not be wrapped by Compression.
				r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).
					Get("/ws", router.handler.SessionWebSocket)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Compression)
					r.Get("/", router.handler.GetSession)
					r.Delete("/", router.handler.CloseSession)
					r.Post("/viewport", router.handler.SessionViewport)
					r.Post("/select", router.handler.SessionSelect)
					r.Delete("/select", router.handler.SessionDeselect)
					r.Post("/refresh", router.handler.SessionRefresh)
				})
			})
		})

		r.Route("/observations", func(r chi.Router) {
			r.Use(middleware.Compression)
			r.Get("/", router.handler.ListObservations)
			r.Get("/clusters", router.handler.Clusters)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", router.handler.CreateDraft)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetDraft)
				r.Delete("/", router.handler.DiscardDraft)
				r.With(router.chiMiddleware.RateLimitCustom(RateLimitUpload)).
					Post("/images", router.handler.AddDraftImages)
				r.Delete("/images/{imageID}", router.handler.RemoveDraftImage)
				r.Get("/images/{imageID}/preview", router.handler.DraftImagePreview)
				r.Post("/location", router.handler.DraftLocation)
				r.With(router.auth.RequireToken, router.chiMiddleware.RateLimitCustom(RateLimitSubmit)).
					Post("/submit", router.handler.SubmitDraft)
			})
		})
	})

	return r
}
