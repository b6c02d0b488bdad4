// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package mapview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
	"github.com/tomtom215/climbmap/internal/spatial"
)

var (
	// ErrSessionClosed is returned when posting to a session whose loop has stopped.
	ErrSessionClosed = errors.New("map session is closed")

	// ErrObservationNotFound is returned when selecting an id the session does not hold.
	ErrObservationNotFound = errors.New("observation not found")
)

// ListingSource loads the observation listing.
type ListingSource interface {
	Load(ctx context.Context, opts backend.ListOptions) backend.Listing
	Refresh(ctx context.Context, opts backend.ListOptions) backend.Listing
	Invalidate()
}

// ViewIncrementer records a view on the backend and returns the updated observation.
type ViewIncrementer interface {
	IncrementView(ctx context.Context, token string, id, viewerID int64) (*models.Observation, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Listing     ListingSource
	Views       ViewIncrementer
	Tracker     *spatial.Tracker
	Selector    spatial.Selector
	Publisher   Publisher
	ListOptions backend.ListOptions
	Now         func() time.Time
}

type eventKind int

const (
	evLoad eventKind = iota
	evSettled
	evMoveEnd
	evSelect
	evDeselect
	evObservationsLoaded
	evViewResult
	evObservationCreated
	evRefresh
	evSnapshot
)

var eventNames = map[eventKind]string{
	evLoad:               "load",
	evSettled:            "settled",
	evMoveEnd:            "moveend",
	evSelect:             "select",
	evDeselect:           "deselect",
	evObservationsLoaded: "observations-loaded",
	evViewResult:         "view-result",
	evObservationCreated: "observation-created",
	evRefresh:            "refresh",
	evSnapshot:           "snapshot",
}

func (k eventKind) String() string {
	return eventNames[k]
}

type event struct {
	kind        eventKind
	viewport    Viewport
	viewer      auth.Viewer
	id          int64
	listing     backend.Listing
	observation *models.Observation
	err         error
	reply       chan reply
}

type reply struct {
	snap Snapshot
	err  error
}

// Session is the viewing state of one map.
type Session struct {
	id   string
	deps Deps

	events chan event
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	lastActive atomic.Int64
	inflight   sync.WaitGroup

	// Owned by the loop goroutine.
	observations []models.Observation
	viewport     Viewport
	bounds       *models.Bounds
	render       spatial.Render
	selected     *models.Observation
	source       backend.Source
	notice       string
	loading      bool
	version      uint64
	updatedAt    time.Time
	stopSettle   func() bool
}

// newSession starts the session loop and the initial listing fetch.
func newSession(id string, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(context.Background(), id))

	_, zoom := deps.Tracker.DefaultViewport()
	s := &Session{
		id:     id,
		deps:   deps,
		events: make(chan event, 16),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		render: spatial.Render{
			Mode:        deps.Selector.ModeFor(zoom),
			Clusters:    []models.Cluster{},
			Individuals: []models.Observation{},
		},
		loading:   true,
		updatedAt: deps.Now(),
	}
	s.touch()

	go s.run()
	s.fetchListing(false)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when a caller last posted to the session.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Load reports that the map finished loading. The first bounds read happens
// after the tracker's settle delay.
func (s *Session) Load(ctx context.Context, vp Viewport) (Snapshot, error) {
	return s.call(ctx, event{kind: evLoad, viewport: vp})
}

// Move reports a completed pan or zoom and returns the recomputed state.
func (s *Session) Move(ctx context.Context, vp Viewport) (Snapshot, error) {
	return s.call(ctx, event{kind: evMoveEnd, viewport: vp})
}

// Select makes an observation the selection. When the viewer is known and is
// not the owner, one view increment is sent in the background.
func (s *Session) Select(ctx context.Context, viewer auth.Viewer, id int64) (Snapshot, error) {
	return s.call(ctx, event{kind: evSelect, viewer: viewer, id: id})
}

// Deselect clears the selection.
func (s *Session) Deselect(ctx context.Context) (Snapshot, error) {
	return s.call(ctx, event{kind: evDeselect})
}

// Refresh re-fetches the listing, bypassing the listing cache.
func (s *Session) Refresh(ctx context.Context) (Snapshot, error) {
	return s.call(ctx, event{kind: evRefresh})
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.call(ctx, event{kind: evSnapshot})
}

// Close stops the loop. Pending background results are dropped.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// Done is closed when the loop has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// observationCreated posts a new observation without waiting for the loop.
func (s *Session) observationCreated(obs models.Observation) {
	s.post(event{kind: evObservationCreated, observation: &obs})
}

func (s *Session) touch() {
	s.lastActive.Store(s.deps.Now().UnixNano())
}

// call posts an event and waits for the loop's reply.
func (s *Session) call(ctx context.Context, ev event) (Snapshot, error) {
	s.touch()
	ev.reply = make(chan reply, 1)

	select {
	case s.events <- ev:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.ctx.Done():
		return Snapshot{}, ErrSessionClosed
	}

	select {
	case r := <-ev.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.done:
		return Snapshot{}, ErrSessionClosed
	}
}

// post delivers a background result. It gives up once the session is closed.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *Session) run() {
	defer close(s.done)
	log := logging.Ctx(s.ctx)
	log.Debug().Msg("Map session started")

	for {
		select {
		case <-s.ctx.Done():
			if s.stopSettle != nil {
				s.stopSettle()
			}
			log.Debug().Uint64("version", s.version).Msg("Map session stopped")
			return

		case ev := <-s.events:
			changed, err := s.handle(ev)
			if err != nil {
				log.Debug().Err(err).Str("event", ev.kind.String()).Msg("Map session event rejected")
			}
			if changed {
				s.version++
				s.updatedAt = s.deps.Now()
			}

			var snap Snapshot
			if changed || ev.reply != nil {
				snap = s.snapshot()
			}
			if ev.reply != nil {
				ev.reply <- reply{snap: snap, err: err}
			}
			if changed && s.deps.Publisher != nil {
				s.deps.Publisher.PublishToSession(s.id, MessageTypeSnapshot, snap)
			}
		}
	}
}

// handle applies one event. It reports whether visible state changed.
func (s *Session) handle(ev event) (bool, error) {
	switch ev.kind {
	case evLoad:
		s.viewport = ev.viewport
		if s.stopSettle != nil {
			s.stopSettle()
		}
		s.stopSettle = s.deps.Tracker.AfterLoad(func() {
			s.post(event{kind: evSettled})
		})
		return false, nil

	case evSettled:
		return s.recompute(), nil

	case evMoveEnd:
		s.viewport = ev.viewport
		return s.recompute(), nil

	case evSelect:
		return s.selectObservation(ev.viewer, ev.id)

	case evDeselect:
		if s.selected == nil {
			return false, nil
		}
		s.selected = nil
		return true, nil

	case evObservationsLoaded:
		s.observations = keepHigherViews(ev.listing.Observations, s.observations)
		s.source = ev.listing.Source
		s.notice = ev.listing.Notice
		s.loading = false
		s.recompute()
		return true, nil

	case evViewResult:
		return s.applyViewResult(ev.id, ev.observation, ev.err), nil

	case evObservationCreated:
		if !replaceByID(s.observations, *ev.observation) {
			s.observations = append(s.observations, ev.observation.Clone())
		}
		s.recompute()
		return true, nil

	case evRefresh:
		s.loading = true
		s.fetchListing(true)
		return true, nil

	case evSnapshot:
		return false, nil
	}
	return false, nil
}

// recompute runs the spatial pipeline over the current list and viewport.
// It does nothing until the map has loaded.
func (s *Session) recompute() bool {
	b, ok := s.deps.Tracker.Read(s.viewport)
	if !ok {
		return false
	}

	start := time.Now()
	s.bounds = &b
	s.render = s.deps.Selector.Apply(s.observations, b)
	metrics.RecordRender(string(s.render.Mode), time.Since(start))
	return true
}

func (s *Session) selectObservation(viewer auth.Viewer, id int64) (bool, error) {
	idx := indexByID(s.observations, id)
	if idx < 0 {
		return false, ErrObservationNotFound
	}

	obs := s.observations[idx].Clone()
	s.selected = &obs

	switch {
	case !viewer.Known():
		metrics.ViewIncrements.WithLabelValues("skipped").Inc()
	case viewer.UserID == obs.UserID:
		metrics.ViewIncrements.WithLabelValues("skipped").Inc()
	default:
		s.incrementView(viewer, obs.ID)
	}
	return true, nil
}

// incrementView sends one increment in the background. It is never retried.
func (s *Session) incrementView(viewer auth.Viewer, id int64) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		updated, err := s.deps.Views.IncrementView(s.ctx, viewer.Token, id, viewer.UserID)
		s.post(event{kind: evViewResult, id: id, observation: updated, err: err})
	}()
}

// applyViewResult merges a server response into the entries with its id only.
// A response carrying fewer views than the session already holds is dropped.
func (s *Session) applyViewResult(requested int64, updated *models.Observation, err error) bool {
	log := logging.Ctx(s.ctx)

	if err != nil {
		metrics.ViewIncrements.WithLabelValues("failed").Inc()
		log.Warn().Err(err).
			Int64("observation_id", requested).
			Bool("connectivity", backend.IsConnectivity(err)).
			Msg("View increment failed")
		return false
	}
	if updated == nil || updated.ID != requested {
		metrics.ViewIncrements.WithLabelValues("failed").Inc()
		log.Warn().Int64("observation_id", requested).Msg("View increment returned a different observation")
		return false
	}

	if idx := indexByID(s.observations, updated.ID); idx >= 0 && s.observations[idx].Views > updated.Views {
		metrics.ViewIncrements.WithLabelValues("stale").Inc()
		log.Debug().Int64("observation_id", updated.ID).
			Int64("views", s.observations[idx].Views).
			Int64("late_views", updated.Views).
			Msg("Ignoring view count older than the one held")
		return false
	}

	changed := replaceByID(s.observations, *updated)
	changed = replaceByID(s.render.Individuals, *updated) || changed

	if s.selected != nil && s.selected.ID == updated.ID && updated.Views >= s.selected.Views {
		sel := updated.Clone()
		s.selected = &sel
		metrics.ViewIncrements.WithLabelValues("applied").Inc()
		return true
	}

	metrics.ViewIncrements.WithLabelValues("stale").Inc()
	return changed
}

// fetchListing loads the listing in the background and posts the result.
func (s *Session) fetchListing(refresh bool) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		var listing backend.Listing
		if refresh {
			listing = s.deps.Listing.Refresh(s.ctx, s.deps.ListOptions)
		} else {
			listing = s.deps.Listing.Load(s.ctx, s.deps.ListOptions)
		}
		s.post(event{kind: evObservationsLoaded, listing: listing})
	}()
}

func indexByID(list []models.Observation, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// replaceByID overwrites every entry with o's id and reports whether any matched.
// Views never go backwards: an entry already holding more views than o is kept,
// so a late response from an earlier increment cannot undo a newer one.
func replaceByID(list []models.Observation, o models.Observation) bool {
	found := false
	for i := range list {
		if list[i].ID != o.ID {
			continue
		}
		found = true
		if o.Views >= list[i].Views {
			list[i] = o.Clone()
		}
	}
	return found
}

// keepHigherViews carries forward the view counts of current that exceed those in
// a freshly loaded listing. A listing fetched before an increment landed would
// otherwise roll the count back.
func keepHigherViews(loaded, current []models.Observation) []models.Observation {
	if len(current) == 0 {
		return loaded
	}
	views := make(map[int64]int64, len(current))
	for i := range current {
		views[current[i].ID] = current[i].Views
	}
	for i := range loaded {
		if v, ok := views[loaded[i].ID]; ok && v > loaded[i].Views {
			loaded[i].Views = v
		}
	}
	return loaded
}
