// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package logging provides centralized zerolog-based logging for Climbmap.

A single global zerolog.Logger is configured once from LoggingConfig and used
everywhere through package-level helpers:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("addr", addr).Msg("Server starting")
	logging.Error().Err(err).Msg("Backend unreachable")

Request-scoped code uses Ctx, which adds request_id, session_id and draft_id
when the context carries them:

	logging.Ctx(ctx).Warn().Err(err).Msg("View increment failed")

SlogHandler bridges slog-only libraries (sutureslog) onto the same logger.

Always terminate event chains with Msg or Send; an unterminated event is
never written.
*/
package logging
