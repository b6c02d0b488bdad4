// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package location decides where a new observation was made.

A Draft is the server-side state of one creation form. Images are staged
through the Intake (content sniffing and size checks), their embedded GPS
metadata is read with goexif, and a downscaled JPEG preview is kept in a
PreviewStore (in-process cache or Redis) so the browser can show thumbnails.

Coordinates are chosen by the Resolver, a small state machine:

	none ──OfferGPS──▶ gps(source) ──ManualPick──▶ manual
	 ▲                    │                           ▲
	 └──SourceRemoved─────┘ (no other GPS image)      │
	 └────────────────────ManualPick──────────────────┘

The first GPS-bearing image wins. Removing it falls back to the next
GPS-bearing image in upload order, or clears the coordinates and shows the
map picker. A manual pick always overrides GPS and is never cleared by
removing images.

Submission runs ValidateSubmission in a fixed order (caption, image count,
numeric coordinates, latitude range, longitude range) and stops at the
first failure. A failed upload leaves the draft untouched so the user can
retry. Every stored preview is released exactly once: on removal, after a
successful submit, on discard, or when an idle draft is reaped.
*/
package location
