// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package mapview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
)

var (
	// ErrSessionNotFound is returned for unknown or reaped session ids.
	ErrSessionNotFound = errors.New("map session not found")

	// ErrDraftNotFound is returned for unknown, submitted or reaped draft ids.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrTooManySessions is returned when MaxSessions sessions are open.
	ErrTooManySessions = errors.New("too many open map sessions")

	// ErrTooManyDrafts is returned when MaxDrafts drafts are open.
	ErrTooManyDrafts = errors.New("too many open drafts")
)

// ManagerConfig holds registry limits and reaping settings.
type ManagerConfig struct {
	IdleTimeout  time.Duration
	ReapInterval time.Duration
	MaxSessions  int
	MaxDrafts    int
}

// NewManagerConfig converts the session section of the configuration.
func NewManagerConfig(cfg *config.SessionConfig) ManagerConfig {
	return ManagerConfig{
		IdleTimeout:  cfg.IdleTimeout,
		ReapInterval: cfg.ReapInterval,
		MaxSessions:  cfg.MaxSessions,
		MaxDrafts:    cfg.MaxDrafts,
	}
}

// Manager is the registry of map sessions and creation drafts.
type Manager struct {
	config    ManagerConfig
	deps      Deps
	draftOpts location.Options
	creator   location.Creator

	mu       sync.RWMutex
	sessions map[string]*Session
	drafts   map[string]*location.Draft
}

// NewManager creates a manager. Sessions share deps; drafts are created with
// draftOpts and submitted through creator.
func NewManager(cfg ManagerConfig, deps Deps, draftOpts location.Options, creator location.Creator) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if draftOpts.Now == nil {
		draftOpts.Now = deps.Now
	}
	return &Manager{
		config:    cfg,
		deps:      deps,
		draftOpts: draftOpts,
		creator:   creator,
		sessions:  make(map[string]*Session),
		drafts:    make(map[string]*location.Draft),
	}
}

// CreateSession opens a new map session and starts loading its listing.
func (m *Manager) CreateSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return nil, ErrTooManySessions
	}

	s := newSession(uuid.New().String(), m.deps)
	m.sessions[s.id] = s
	metrics.MapSessionsActive.Set(float64(len(m.sessions)))
	return s, nil
}

// Session returns an open session.
func (m *Manager) Session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// CloseSession stops and forgets a session.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.MapSessionsActive.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// CreateDraft opens an empty creation draft.
func (m *Manager) CreateDraft() (*location.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxDrafts > 0 && len(m.drafts) >= m.config.MaxDrafts {
		return nil, ErrTooManyDrafts
	}

	d := location.NewDraft(uuid.New().String(), m.draftOpts)
	m.drafts[d.ID()] = d
	metrics.DraftsActive.Set(float64(len(m.drafts)))
	return d, nil
}

// Draft returns an open draft.
func (m *Manager) Draft(id string) (*location.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// DiscardDraft releases a draft's previews and forgets it.
func (m *Manager) DiscardDraft(ctx context.Context, id string) error {
	d := m.removeDraft(id)
	if d == nil {
		return ErrDraftNotFound
	}
	d.Discard(ctx)
	return nil
}

// SubmitDraft uploads a draft. On success the draft is forgotten, the listing
// cache is invalidated and the new observation is pushed to every session.
// On failure the draft stays registered and populated.
func (m *Manager) SubmitDraft(ctx context.Context, id, token string, form location.SubmitForm) (*models.Observation, error) {
	d, err := m.Draft(id)
	if err != nil {
		return nil, err
	}

	created, err := d.Submit(ctx, token, form, m.creator)
	if err != nil {
		return nil, err
	}

	m.removeDraft(id)
	if m.deps.Listing != nil {
		m.deps.Listing.Invalidate()
	}
	m.Broadcast(*created)

	logging.Ctx(ctx).Info().
		Int64("observation_id", created.ID).
		Int("images", len(created.ImageURLs)).
		Msg("Observation created")
	return created, nil
}

// Broadcast posts a created observation to every open session.
func (m *Manager) Broadcast(obs models.Observation) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.observationCreated(obs)
	}
}

// SessionCount returns the number of open sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DraftCount returns the number of open drafts.
func (m *Manager) DraftCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drafts)
}

// Reap closes sessions and discards drafts idle for longer than IdleTimeout.
func (m *Manager) Reap(ctx context.Context) (sessions, drafts int) {
	cutoff := m.deps.Now().Add(-m.config.IdleTimeout)

	var idleSessions []*Session
	var idleDrafts []*location.Draft

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idleSessions = append(idleSessions, s)
			delete(m.sessions, id)
		}
	}
	for id, d := range m.drafts {
		if d.LastActive().Before(cutoff) {
			idleDrafts = append(idleDrafts, d)
			delete(m.drafts, id)
		}
	}
	metrics.MapSessionsActive.Set(float64(len(m.sessions)))
	metrics.DraftsActive.Set(float64(len(m.drafts)))
	m.mu.Unlock()

	for _, s := range idleSessions {
		s.Close()
	}
	for _, d := range idleDrafts {
		d.Discard(ctx)
	}
	metrics.MapSessionsReaped.Add(float64(len(idleSessions)))

	if len(idleSessions) > 0 || len(idleDrafts) > 0 {
		logging.Debug().
			Int("sessions", len(idleSessions)).
			Int("drafts", len(idleDrafts)).
			Msg("Reaped idle map sessions and drafts")
	}
	return len(idleSessions), len(idleDrafts)
}

// RunWithContext reaps on every ReapInterval until ctx is cancelled, then
// closes every session and discards every draft.
func (m *Manager) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(m.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-ticker.C:
			m.Reap(ctx)
		}
	}
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	drafts := m.drafts
	m.sessions = make(map[string]*Session)
	m.drafts = make(map[string]*location.Draft)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	for _, d := range drafts {
		d.Discard(context.Background())
	}
	metrics.MapSessionsActive.Set(0)
	metrics.DraftsActive.Set(0)

	logging.Info().
		Str("component", "mapview-manager").
		Int("sessions_closed", len(sessions)).
		Int("drafts_discarded", len(drafts)).
		Msg("Map session manager stopped")
}

func (m *Manager) removeDraft(id string) *location.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[id]
	if !ok {
		return nil
	}
	delete(m.drafts, id)
	metrics.DraftsActive.Set(float64(len(m.drafts)))
	return d
}
