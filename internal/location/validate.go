// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/climbmap/internal/validation"
)

// ValidationError is the first rule a submission broke.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionInput is the creation form as the user filled it in. Coordinates
// are text, as typed or as formatted from the resolver.
type SubmissionInput struct {
	Caption    string
	ImageCount int
	Latitude   string
	Longitude  string
}

// Submission is a validated form.
type Submission struct {
	Caption   string
	Latitude  float64
	Longitude float64
}

// ValidateSubmission checks a submission against the default limits.
func ValidateSubmission(in SubmissionInput) (Submission, error) {
	return DefaultIntake().ValidateSubmission(in)
}

// ValidateSubmission checks, in order: caption, image count, that both
// coordinates are finite numbers, latitude range, longitude range. Only the
// first failure is reported.
func (it Intake) ValidateSubmission(in SubmissionInput) (Submission, error) {
	v := validation.GetValidator()
	caption := strings.TrimSpace(in.Caption)

	if v.Var(caption, "notblank") != nil {
		return Submission{}, &ValidationError{Field: "caption", Message: "Caption is required"}
	}
	if v.Var(caption, fmt.Sprintf("max=%d", it.MaxCaptionLength)) != nil {
		return Submission{}, &ValidationError{
			Field:   "caption",
			Message: fmt.Sprintf("Caption must be %d characters or fewer", it.MaxCaptionLength),
		}
	}

	if in.ImageCount < 1 {
		return Submission{}, &ValidationError{Field: "images", Message: "Add at least one image"}
	}
	if in.ImageCount > it.MaxImages {
		return Submission{}, &ValidationError{
			Field:   "images",
			Message: fmt.Sprintf("An observation can have at most %d images", it.MaxImages),
		}
	}

	latText, lngText := strings.TrimSpace(in.Latitude), strings.TrimSpace(in.Longitude)
	if latText == "" || lngText == "" {
		return Submission{}, &ValidationError{
			Field:   "location",
			Message: "Choose a location on the map or add a photo with GPS data",
		}
	}
	lat, latErr := strconv.ParseFloat(latText, 64)
	lng, lngErr := strconv.ParseFloat(lngText, 64)
	if latErr != nil || lngErr != nil || v.Var(lat, "finite") != nil || v.Var(lng, "finite") != nil {
		return Submission{}, &ValidationError{
			Field:   "location",
			Message: "Latitude and longitude must be valid numbers",
		}
	}

	if lat < -90 || lat > 90 {
		return Submission{}, &ValidationError{Field: "latitude", Message: "Latitude must be between -90 and 90"}
	}
	if lng < -180 || lng > 180 {
		return Submission{}, &ValidationError{Field: "longitude", Message: "Longitude must be between -180 and 180"}
	}

	return Submission{Caption: caption, Latitude: lat, Longitude: lng}, nil
}

// formatCoordinate renders a resolver coordinate for SubmissionInput.
func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
