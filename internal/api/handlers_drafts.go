// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/climbmap/internal/auth"
	"github.com/tomtom215/climbmap/internal/location"
	"github.com/tomtom215/climbmap/internal/logging"
)

// imagesFormField is the multipart field carrying staged images.
const imagesFormField = "images"

// multipartOverhead covers part headers and boundaries on top of image bytes.
const multipartOverhead = 1 << 20

var errNotMultipart = errors.New("request is not multipart/form-data")

// draftFromRequest resolves the {id} path parameter. On failure the response
// has been written and the draft is nil.
func (h *Handler) draftFromRequest(w http.ResponseWriter, r *http.Request) (*location.Draft, context.Context) {
	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithDraftID(r.Context(), id)
	draft, err := h.manager.Draft(id)
	if err != nil {
		respondDomainError(w, err)
		return nil, ctx
	}
	return draft, ctx
}

// CreateDraft opens an observation creation draft.
//
// @Summary Open a creation draft
// @Tags Drafts
// @Produce json
// @Success 201 {object} models.APIResponse{data=location.Snapshot}
// @Failure 503 {object} models.APIResponse "Server at capacity"
// @Router /drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	draft, err := h.manager.CreateDraft()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, draft.Snapshot(), start)
}

// GetDraft returns the draft state.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	draft, _ := h.draftFromRequest(w, r)
	if draft == nil {
		return
	}
	respondSuccess(w, http.StatusOK, draft.Snapshot(), start)
}

// DiscardDraft abandons a draft and releases its previews.
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithDraftID(r.Context(), id)
	if err := h.manager.DiscardDraft(ctx, id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDraftImages stages the images of a multipart upload. Files that fail
// intake are reported individually; the request succeeds as long as the
// upload itself was readable.
//
// @Summary Stage images
// @Tags Drafts
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Image files (JPEG, PNG, GIF or WebP)"
// @Success 200 {object} models.APIResponse{data=location.AddResult}
// @Failure 400 {object} models.APIResponse "Malformed upload"
// @Failure 413 {object} models.APIResponse "Upload too large"
// @Router /drafts/{id}/images [post]
func (h *Handler) AddDraftImages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	draft, ctx := h.draftFromRequest(w, r)
	if draft == nil {
		return
	}

	files, err := h.readImageParts(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload is too large", nil)
		default:
			logging.Ctx(ctx).Debug().Err(err).Msg("Rejected image upload")
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Upload must be multipart/form-data with an images field", nil)
		}
		return
	}
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No images in upload", nil)
		return
	}

	result, err := draft.AddImages(ctx, files)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, result, start)
}

// readImageParts streams the "images" parts of a multipart body. Each part is
// read to one byte past the size limit so intake can reject it as too large
// without buffering the rest.
func (h *Handler) readImageParts(w http.ResponseWriter, r *http.Request) ([]location.File, error) {
	maxBody := int64(h.intake.MaxImages+1)*h.intake.MaxImageBytes + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNotMultipart, err)
	}

	var files []location.File
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w", err)
		}

		file, ok, err := h.readImagePart(part)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, file)
		}
	}
}

func (h *Handler) readImagePart(part *multipart.Part) (location.File, bool, error) {
	if part.FormName() != imagesFormField || part.FileName() == "" {
		return location.File{}, false, nil
	}
	data, err := io.ReadAll(io.LimitReader(part, h.intake.MaxImageBytes+1))
	if err != nil {
		return location.File{}, false, fmt.Errorf("read %s: %w", part.FileName(), err)
	}
	// Drain the remainder of an oversized part so the next one can be read.
	if _, err := io.Copy(io.Discard, part); err != nil {
		return location.File{}, false, fmt.Errorf("read %s: %w", part.FileName(), err)
	}
	return location.File{Filename: part.FileName(), Data: data}, true, nil
}

// RemoveDraftImage removes a staged image.
func (h *Handler) RemoveDraftImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	draft, ctx := h.draftFromRequest(w, r)
	if draft == nil {
		return
	}

	snap, err := draft.RemoveImage(ctx, chi.URLParam(r, "imageID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// DraftImagePreview serves the JPEG preview of a staged image.
//
// @Summary Image preview
// @Tags Drafts
// @Produce image/jpeg
// @Success 200 {file} binary
// @Failure 404 {object} models.APIResponse "Image or preview not found"
// @Router /drafts/{id}/images/{imageID}/preview [get]
func (h *Handler) DraftImagePreview(w http.ResponseWriter, r *http.Request) {
	draft, ctx := h.draftFromRequest(w, r)
	if draft == nil {
		return
	}

	data, err := draft.Preview(ctx, chi.URLParam(r, "imageID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Failed to write preview")
	}
}

// DraftLocation records a location picked on the map.
func (h *Handler) DraftLocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	draft, _ := h.draftFromRequest(w, r)
	if draft == nil {
		return
	}

	var req LocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := draft.ManualPick(*req.Latitude, *req.Longitude)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap, start)
}

// SubmitDraft validates the form and creates the observation on the backend
// with the caller's bearer token. On success the draft is closed and every
// open map session sees the new observation. On failure the draft is kept so
// the user can retry.
//
// @Summary Submit an observation
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitRequest true "Caption and optional coordinates"
// @Success 201 {object} models.APIResponse{data=models.Observation}
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 401 {object} models.APIResponse "Missing or rejected token"
// @Failure 502 {object} models.APIResponse "Backend rejected the observation"
// @Failure 503 {object} models.APIResponse "Backend unreachable"
// @Router /drafts/{id}/submit [post]
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithDraftID(r.Context(), id)

	var req SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return
	}

	viewer := auth.ViewerFromContext(r.Context())
	obs, err := h.manager.SubmitDraft(ctx, id, viewer.Token, location.SubmitForm{
		Caption:   req.Caption,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Ctx(ctx).Info().Int64("observation_id", obs.ID).Msg("Observation created")
	respondSuccess(w, http.StatusCreated, obs, start)
}
