// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/models"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

// Viewer is the identity of whoever is browsing. The zero value is an
// anonymous viewer without a token.
type Viewer struct {
	// Token is the raw bearer token, forwarded to the backend on create and view calls.
	Token string
	// UserID is set only when the token was verified and carries a numeric id.
	UserID int64
}

// Known reports whether the viewer has a verified identity.
func (v Viewer) Known() bool {
	return v.UserID > 0
}

// ViewerFromContext returns the viewer stored by Identify, or an anonymous viewer.
func ViewerFromContext(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerContextKey).(Viewer); ok {
		return v
	}
	return Viewer{}
}

// ContextWithViewer stores a viewer in the context.
func ContextWithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, v)
}

// Middleware attaches viewer identity to requests.
type Middleware struct {
	jwt *JWTManager // nil when verification is disabled
}

// NewMiddleware creates the identity middleware. A nil manager disables
// verification: tokens are carried but viewers stay anonymous.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwt: jwtManager}
}

// Identify never rejects a request. It reads the bearer token from the
// Authorization header (or the access_token query parameter, for WebSocket
// upgrades where browsers cannot set headers) and stores a Viewer in the context.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		viewer := Viewer{Token: token}

		if token != "" && m.jwt != nil {
			claims, err := m.jwt.ValidateToken(token)
			switch {
			case err != nil:
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Bearer token rejected, continuing as anonymous viewer")
				viewer = Viewer{}
			default:
				if id, ok := claims.ViewerID(); ok {
					viewer.UserID = id
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithViewer(r.Context(), viewer)))
	})
}

// RequireToken rejects requests without a usable bearer token with 401.
// Must run after Identify.
func (m *Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := ViewerFromContext(r.Context())
		if viewer.Token == "" || (m.jwt != nil && !viewer.Known()) {
			writeUnauthorized(w, "Sign in to post an observation")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads "Authorization: Bearer <token>" or ?access_token=.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="climbmap"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: "UNAUTHORIZED", Message: message},
	})
}
