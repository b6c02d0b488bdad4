// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package validation provides struct validation using go-playground/validator v10.

A thread-safe singleton validator caches struct metadata. Errors are reported
with JSON field names and translated into VALIDATION_ERROR responses:

	type viewportRequest struct {
	    Event string  `json:"event" validate:"required,oneof=load moveend"`
	    Zoom  float64 `json:"zoom" validate:"finite,gte=0,lte=24"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    // {"code":"VALIDATION_ERROR","message":"event must be one of: load moveend"}
	}

Custom tags: notblank (trimmed non-empty string), finite (no NaN/Inf).
*/
package validation
