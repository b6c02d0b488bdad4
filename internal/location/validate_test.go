// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"errors"
	"strings"
	"testing"
)

func validInput() SubmissionInput {
	return SubmissionInput{
		Caption:    "Sunrise from the summit",
		ImageCount: 1,
		Latitude:   "37.7749",
		Longitude:  "-122.4194",
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SubmissionInput)
		wantField string
		wantMsg   string
	}{
		{"valid", func(*SubmissionInput) {}, "", ""},
		{"empty caption", func(in *SubmissionInput) { in.Caption = "" }, "caption", "Caption is required"},
		{"whitespace caption", func(in *SubmissionInput) { in.Caption = " \t\n " }, "caption", "Caption is required"},
		{"caption at limit", func(in *SubmissionInput) { in.Caption = strings.Repeat("é", 500) }, "", ""},
		{"caption over limit", func(in *SubmissionInput) { in.Caption = strings.Repeat("a", 501) }, "caption", "Caption must be 500 characters or fewer"},
		{"no images", func(in *SubmissionInput) { in.ImageCount = 0 }, "images", "Add at least one image"},
		{"six images", func(in *SubmissionInput) { in.ImageCount = 6 }, "images", "An observation can have at most 5 images"},
		{"five images", func(in *SubmissionInput) { in.ImageCount = 5 }, "", ""},
		{"missing location", func(in *SubmissionInput) { in.Latitude, in.Longitude = "", "" }, "location", "Choose a location on the map or add a photo with GPS data"},
		{"non-numeric latitude", func(in *SubmissionInput) { in.Latitude = "north" }, "location", "Latitude and longitude must be valid numbers"},
		{"NaN longitude", func(in *SubmissionInput) { in.Longitude = "NaN" }, "location", "Latitude and longitude must be valid numbers"},
		{"infinite latitude", func(in *SubmissionInput) { in.Latitude = "+Inf" }, "location", "Latitude and longitude must be valid numbers"},
		{"latitude 91", func(in *SubmissionInput) { in.Latitude = "91" }, "latitude", "Latitude must be between -90 and 90"},
		{"longitude -181", func(in *SubmissionInput) { in.Longitude = "-181" }, "longitude", "Longitude must be between -180 and 180"},
		{"boundary -90/180", func(in *SubmissionInput) { in.Latitude, in.Longitude = "-90", "180" }, "", ""},
		{"boundary 90/-180", func(in *SubmissionInput) { in.Latitude, in.Longitude = "90", "-180" }, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := ValidateSubmission(in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateSubmission() unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateSubmission() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateSubmission_Order(t *testing.T) {
	// Every rule is broken; the caption is reported first.
	in := SubmissionInput{Caption: "", ImageCount: 6, Latitude: "91", Longitude: "-181"}
	_, err := ValidateSubmission(in)

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "caption" {
		t.Fatalf("first failure = %v, want caption", err)
	}

	in.Caption = "ok"
	_, err = ValidateSubmission(in)
	if !errors.As(err, &verr) || verr.Field != "images" {
		t.Fatalf("second failure = %v, want images", err)
	}

	in.ImageCount = 2
	_, err = ValidateSubmission(in)
	if !errors.As(err, &verr) || verr.Field != "latitude" {
		t.Fatalf("third failure = %v, want latitude", err)
	}
}

func TestValidateSubmission_Result(t *testing.T) {
	in := validInput()
	in.Caption = "  trimmed  "
	in.Latitude = " -90 "

	sub, err := ValidateSubmission(in)
	if err != nil {
		t.Fatalf("ValidateSubmission() error: %v", err)
	}
	if sub.Caption != "trimmed" {
		t.Errorf("Caption = %q, want trimmed", sub.Caption)
	}
	if sub.Latitude != -90 || sub.Longitude != -122.4194 {
		t.Errorf("coordinates = %v,%v", sub.Latitude, sub.Longitude)
	}
}
