// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
)

// releaseTimeout bounds preview cleanup, which runs even when the triggering
// request has been cancelled.
const releaseTimeout = 5 * time.Second

var (
	// ErrDraftClosed is returned for any operation on a submitted or discarded draft.
	ErrDraftClosed = errors.New("draft is closed")

	// ErrImageNotFound is returned when an image id is not staged in the draft.
	ErrImageNotFound = errors.New("image not found")
)

// Creator uploads a validated observation.
type Creator interface {
	CreateObservation(ctx context.Context, token string, req *backend.CreateRequest) (*models.Observation, error)
}

// Options configures a Draft. Zero values fall back to defaults; a nil Store
// disables previews.
type Options struct {
	Intake   Intake
	Renderer Renderer
	Store    PreviewStore
	Extract  GPSExtractor
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Intake.MaxImages <= 0 {
		o.Intake = DefaultIntake()
	}
	if o.Renderer.MaxDimension <= 0 {
		o.Renderer = NewRenderer(nil)
	}
	if o.Extract == nil {
		o.Extract = ExtractGPS
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// candidate is one staged image.
type candidate struct {
	id          string
	filename    string
	contentType string
	data        []byte
	gps         *GPS
	hasPreview  bool
	released    bool
}

func (c *candidate) view() ImageView {
	return ImageView{
		ID:          c.id,
		Filename:    c.filename,
		ContentType: c.contentType,
		Size:        len(c.data),
		HasGPS:      c.gps != nil,
		GPS:         c.gps,
		HasPreview:  c.hasPreview,
	}
}

// ImageView describes a staged image to the browser.
type ImageView struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	HasGPS      bool   `json:"has_gps"`
	GPS         *GPS   `json:"gps,omitempty"`
	HasPreview  bool   `json:"has_preview"`
}

// Snapshot is a copy of a draft's visible state.
type Snapshot struct {
	ID             string      `json:"id"`
	Images         []ImageView `json:"images"`
	Location       *GPS        `json:"location"`
	LocationSource State       `json:"location_source"`
	PickerVisible  bool        `json:"picker_visible"`
	Remaining      int         `json:"remaining"`
}

// AddResult reports what happened to each file of an upload batch.
type AddResult struct {
	Added    []ImageView `json:"added"`
	Rejected []Rejection `json:"rejected"`
	Draft    Snapshot    `json:"draft"`
}

// SubmitForm carries the user-entered fields. Empty coordinates mean "use the
// resolved location".
type SubmitForm struct {
	Caption   string
	Latitude  string
	Longitude string
}

// Draft is one creation form. All methods are safe for concurrent use.
type Draft struct {
	id   string
	opts Options

	mu         sync.Mutex
	images     []*candidate
	resolver   *Resolver
	closed     bool
	lastActive time.Time
}

// NewDraft creates an empty draft.
func NewDraft(id string, opts Options) *Draft {
	opts = opts.withDefaults()
	return &Draft{
		id:         id,
		opts:       opts,
		resolver:   NewResolver(),
		lastActive: opts.Now(),
	}
}

// ID returns the draft id.
func (d *Draft) ID() string {
	return d.id
}

// LastActive returns when the draft was last touched.
func (d *Draft) LastActive() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// AddImages stages a batch. Each file is checked on its own; rejected files
// do not prevent the others from being added. The first GPS-bearing image is
// adopted as the location, and the picker is shown when the batch leaves the
// draft without one.
func (d *Draft) AddImages(ctx context.Context, files []File) (AddResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return AddResult{}, ErrDraftClosed
	}
	d.touch()

	accepted, rejected := d.opts.Intake.admit(len(d.images), files)
	added := make([]ImageView, 0, len(accepted))

	for _, a := range accepted {
		c := &candidate{
			id:          uuid.New().String(),
			filename:    a.file.Filename,
			contentType: a.contentType,
			data:        a.file.Data,
		}

		if gps, ok := d.opts.Extract(a.file.Data); ok {
			c.gps = &gps
		}
		d.storePreview(ctx, c)

		d.images = append(d.images, c)
		if c.gps != nil {
			d.resolver.OfferGPS(c.id, *c.gps)
		}
		added = append(added, c.view())
	}

	// An all-rejected batch has not offered anything, so leave the picker alone.
	if len(accepted) > 0 {
		d.resolver.FinishBatch()
	}

	if rejected == nil {
		rejected = []Rejection{}
	}
	return AddResult{Added: added, Rejected: rejected, Draft: d.snapshot()}, nil
}

// RemoveImage unstages an image and releases its preview.
func (d *Draft) RemoveImage(ctx context.Context, imageID string) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Snapshot{}, ErrDraftClosed
	}
	d.touch()

	for i, c := range d.images {
		if c.id != imageID {
			continue
		}
		d.images = append(d.images[:i], d.images[i+1:]...)
		d.release(ctx, c)
		d.resolver.SourceRemoved(c.id)
		return d.snapshot(), nil
	}
	return Snapshot{}, ErrImageNotFound
}

// ManualPick sets the location from a map click.
func (d *Draft) ManualPick(lat, lng float64) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Snapshot{}, ErrDraftClosed
	}
	d.touch()

	d.resolver.ManualPick(lat, lng)
	return d.snapshot(), nil
}

// Preview returns the rendered JPEG preview of a staged image.
func (d *Draft) Preview(ctx context.Context, imageID string) ([]byte, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDraftClosed
	}
	d.touch()

	var found *candidate
	for _, c := range d.images {
		if c.id == imageID {
			found = c
			break
		}
	}
	d.mu.Unlock()

	if found == nil {
		return nil, ErrImageNotFound
	}
	if !found.hasPreview || d.opts.Store == nil {
		return nil, ErrPreviewNotFound
	}
	return d.opts.Store.Get(ctx, found.id)
}

// Submit validates the form and uploads it. A validation failure returns a
// *ValidationError; a backend failure is returned as is. In both cases the
// draft keeps its images and location so the user can retry. On success
// every preview is released and the draft is closed.
func (d *Draft) Submit(ctx context.Context, token string, form SubmitForm, creator Creator) (*models.Observation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDraftClosed
	}
	d.touch()

	input := SubmissionInput{
		Caption:    form.Caption,
		ImageCount: len(d.images),
		Latitude:   form.Latitude,
		Longitude:  form.Longitude,
	}
	if input.Latitude == "" && input.Longitude == "" {
		if coords, ok := d.resolver.Coordinates(); ok {
			input.Latitude = formatCoordinate(coords.Latitude)
			input.Longitude = formatCoordinate(coords.Longitude)
		}
	}

	sub, err := d.opts.Intake.ValidateSubmission(input)
	if err != nil {
		metrics.DraftSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	req := &backend.CreateRequest{
		Caption:   sub.Caption,
		Latitude:  sub.Latitude,
		Longitude: sub.Longitude,
		Images:    make([]backend.ImageUpload, len(d.images)),
	}
	for i, c := range d.images {
		req.Images[i] = backend.ImageUpload{
			Filename:    c.filename,
			ContentType: c.contentType,
			Data:        c.data,
		}
	}

	created, err := creator.CreateObservation(ctx, token, req)
	if err != nil {
		metrics.DraftSubmissions.WithLabelValues("failed").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("Observation upload failed, draft kept for retry")
		return nil, err
	}

	metrics.DraftSubmissions.WithLabelValues("created").Inc()
	d.closeLocked(ctx)
	return created, nil
}

// Discard releases every preview and closes the draft. Calling it on a
// closed draft does nothing.
func (d *Draft) Discard(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closeLocked(ctx)
}

// Closed reports whether the draft was submitted or discarded.
func (d *Draft) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Snapshot returns a copy of the draft's visible state.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

func (d *Draft) snapshot() Snapshot {
	images := make([]ImageView, len(d.images))
	for i, c := range d.images {
		images[i] = c.view()
	}

	s := Snapshot{
		ID:             d.id,
		Images:         images,
		LocationSource: d.resolver.State(),
		PickerVisible:  d.resolver.PickerVisible(),
		Remaining:      max(d.opts.Intake.MaxImages-len(d.images), 0),
	}
	if coords, ok := d.resolver.Coordinates(); ok {
		s.Location = &coords
	}
	return s
}

func (d *Draft) closeLocked(ctx context.Context) {
	for _, c := range d.images {
		d.release(ctx, c)
	}
	d.images = nil
	d.closed = true
}

func (d *Draft) touch() {
	d.lastActive = d.opts.Now()
}

func (d *Draft) storePreview(ctx context.Context, c *candidate) {
	if d.opts.Store == nil {
		return
	}

	log := logging.Ctx(ctx)
	preview, err := d.opts.Renderer.Render(c.data)
	if err != nil {
		log.Debug().Err(err).Str("image_id", c.id).Str("content_type", c.contentType).
			Msg("No preview for image")
		return
	}
	if err := d.opts.Store.Put(ctx, c.id, preview); err != nil {
		log.Warn().Err(err).Str("image_id", c.id).Msg("Failed to store image preview")
		return
	}
	c.hasPreview = true
}

// release frees a candidate's preview. It is a no-op after the first call.
func (d *Draft) release(ctx context.Context, c *candidate) {
	if c.released {
		return
	}
	c.released = true

	if !c.hasPreview || d.opts.Store == nil {
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := d.opts.Store.Release(rctx, c.id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image_id", c.id).Msg("Failed to release image preview")
	}
}
