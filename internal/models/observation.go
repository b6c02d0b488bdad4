// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package models

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climbmap/internal/logging"
)

// Observation is one user post: a caption, 1-5 images and the point where it was taken.
//
// Observations are immutable in this service except for Views, which is only ever
// replaced by the value the backend returns from an increment call.
//
// Note the field order: Observation carries (latitude, longitude) while Bounds, Cluster
// and LngLat are longitude first. Keep the asymmetry at every boundary.
type Observation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Caption   string    `json:"caption"`
	ImageURLs []string  `json:"image_urls"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// observationWire is the decoding shape for backend payloads. Older backend builds
// send the creation time as "dateposted" instead of "created_at".
type observationWire struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Caption    string    `json:"caption"`
	ImageURLs  []string  `json:"image_urls"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Views      int64     `json:"views"`
	CreatedAt  *wireTime `json:"created_at"`
	DatePosted *wireTime `json:"dateposted"`
	UpdatedAt  *wireTime `json:"updated_at"`
}

// UnmarshalJSON decodes a backend observation, reconciling created_at and dateposted.
// created_at wins when both are present.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var w observationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*o = Observation{
		ID:        w.ID,
		UserID:    w.UserID,
		Caption:   w.Caption,
		ImageURLs: w.ImageURLs,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Views:     w.Views,
	}

	switch {
	case w.CreatedAt != nil && !w.CreatedAt.IsZero():
		o.CreatedAt = w.CreatedAt.Time
	case w.DatePosted != nil:
		o.CreatedAt = w.DatePosted.Time
	}
	if w.UpdatedAt != nil {
		o.UpdatedAt = w.UpdatedAt.Time
	}
	return nil
}

// Clone returns a deep copy so callers can hand observations across goroutines.
func (o Observation) Clone() Observation {
	c := o
	if o.ImageURLs != nil {
		c.ImageURLs = append([]string(nil), o.ImageURLs...)
	}
	return c
}

// CloneObservations deep-copies a slice of observations. A nil input stays nil.
func CloneObservations(in []Observation) []Observation {
	if in == nil {
		return nil
	}
	out := make([]Observation, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// wireTimeLayouts are tried in order. The Python backend emits naive ISO timestamps
// (no zone) which are read as UTC.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// wireTime accepts the timestamp formats the backend has used over time. A value
// in none of them is logged and left zero: one malformed row must not cost the
// map the whole listing, and nothing here orders or filters by time.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		logging.Warn().Str("value", string(data)).Msg("Ignoring non-string observation timestamp")
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	logging.Warn().Str("value", s).Msg("Ignoring unrecognized observation timestamp")
	return nil
}
