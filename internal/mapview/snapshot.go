// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package mapview

import (
	"time"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
)

// MessageTypeSnapshot is the WebSocket message type carrying a Snapshot.
const MessageTypeSnapshot = "snapshot"

// Publisher pushes session updates to connected browsers.
type Publisher interface {
	PublishToSession(sessionID, messageType string, data interface{})
}

// Snapshot is a copy of a session's state, safe to hand to other goroutines.
type Snapshot struct {
	SessionID string              `json:"session_id"`
	Version   uint64              `json:"version"`
	Bounds    *models.Bounds      `json:"bounds"`
	Render    spatial.Render      `json:"render"`
	Selected  *models.Observation `json:"selected"`
	Total     int                 `json:"total_observations"`
	Source    backend.Source      `json:"source,omitempty"`
	Notice    string              `json:"notice,omitempty"`
	Loading   bool                `json:"loading"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Observation returns the observation with id from the individual list.
func (s Snapshot) Observation(id int64) (models.Observation, bool) {
	for _, o := range s.Render.Individuals {
		if o.ID == id {
			return o, true
		}
	}
	return models.Observation{}, false
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		Version:   s.version,
		Render: spatial.Render{
			Mode:        s.render.Mode,
			Clusters:    append([]models.Cluster{}, s.render.Clusters...),
			Individuals: models.CloneObservations(s.render.Individuals),
		},
		Total:     len(s.observations),
		Source:    s.source,
		Notice:    s.notice,
		Loading:   s.loading,
		UpdatedAt: s.updatedAt,
	}
	if snap.Render.Individuals == nil {
		snap.Render.Individuals = []models.Observation{}
	}
	if s.bounds != nil {
		b := *s.bounds
		snap.Bounds = &b
	}
	if s.selected != nil {
		sel := s.selected.Clone()
		snap.Selected = &sel
	}
	return snap
}
