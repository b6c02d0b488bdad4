// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package auth resolves viewer identity from bearer tokens.

Tokens are issued by an external authentication service. This package only
verifies them (HS256 with the shared JWT_SECRET) to learn who is looking at the
map, which drives self-view suppression. Browsing never requires a token;
posting an observation does.

	mw := auth.NewMiddleware(jwtManager)
	r.Use(mw.Identify)
	r.With(mw.RequireToken).Post("/drafts/{id}/submit", h.SubmitDraft)

Handlers read the result with ViewerFromContext.
*/
package auth
