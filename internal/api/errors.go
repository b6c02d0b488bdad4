// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/mapview"
	"github.com/tomtom215/climbmap/internal/models"
)

// classifyError maps a domain error to a status code and an envelope error.
func classifyError(err error) (int, *models.APIError) {
	var verr *location.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: verr.Message,
			Details: map[string]interface{}{"field": verr.Field},
		}
	}

	switch {
	case errors.Is(err, mapview.ErrSessionNotFound), errors.Is(err, mapview.ErrSessionClosed):
		return http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "Map session not found"}
	case errors.Is(err, mapview.ErrDraftNotFound), errors.Is(err, location.ErrDraftClosed):
		return http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "Draft not found"}
	case errors.Is(err, location.ErrImageNotFound):
		return http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "Image not found"}
	case errors.Is(err, location.ErrPreviewNotFound):
		return http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "Preview not available"}
	case errors.Is(err, mapview.ErrObservationNotFound):
		return http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "Observation is not on the map"}
	case errors.Is(err, mapview.ErrTooManySessions), errors.Is(err, mapview.ErrTooManyDrafts):
		return http.StatusServiceUnavailable, &models.APIError{Code: "SERVICE_UNAVAILABLE", Message: "Server is at capacity, try again later"}
	}

	if re, ok := backend.AsResponseError(err); ok {
		if re.StatusCode == http.StatusUnauthorized || re.StatusCode == http.StatusForbidden {
			return http.StatusUnauthorized, &models.APIError{Code: "UNAUTHORIZED", Message: re.Message()}
		}
		return http.StatusBadGateway, &models.APIError{
			Code:    "EXTERNAL_SERVICE_FAILED",
			Message: re.Message(),
			Details: map[string]interface{}{"upstream_status": re.StatusCode},
		}
	}

	if backend.IsConnectivity(err) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, &models.APIError{Code: "SERVICE_UNAVAILABLE", Message: "Unable to reach the observation service, try again later"}
	}

	return http.StatusInternalServerError, &models.APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"}
}

// respondDomainError writes the envelope for err. Only unexpected errors are
// logged at error level; the rest are ordinary outcomes.
func respondDomainError(w http.ResponseWriter, err error) {
	status, apiErr := classifyError(err)
	var logged error
	if status >= http.StatusInternalServerError {
		logged = err
	}
	respondAPIError(w, status, apiErr, logged)
}
