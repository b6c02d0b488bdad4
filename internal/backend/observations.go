// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climbmap/internal/models"
)

// ObservationAPI is the set of backend operations the service depends on.
// Client and CircuitBreakerClient implement it; tests substitute fakes.
type ObservationAPI interface {
	ListObservations(ctx context.Context, opts ListOptions) ([]models.Observation, error)
	CreateObservation(ctx context.Context, token string, req *CreateRequest) (*models.Observation, error)
	IncrementView(ctx context.Context, token string, id, viewerID int64) (*models.Observation, error)
}

// DefaultListLimit is the backend's page size when no limit is sent.
const DefaultListLimit = 100

// ListOptions are the backend's pagination parameters. Zero values are omitted
// so the backend applies its own defaults (skip=0, limit=100).
type ListOptions struct {
	Skip  int
	Limit int
}

func (o ListOptions) query() string {
	v := url.Values{}
	if o.Skip > 0 {
		v.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ImageUpload is one image part of a create request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateRequest is a validated observation ready to be uploaded.
type CreateRequest struct {
	Caption   string
	Latitude  float64
	Longitude float64
	Images    []ImageUpload
}

// ListObservations fetches the observation listing. HTTP 429 is retried.
func (c *Client) ListObservations(ctx context.Context, opts ListOptions) ([]models.Observation, error) {
	reqURL := c.endpoint("/observations/") + opts.query()

	resp, err := c.doWithRateLimitRetry(ctx, OpList, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create list request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newResponseError(OpList, resp)
	}

	var observations []models.Observation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("%s: decode observations: %w", OpList, err)
	}
	if observations == nil {
		observations = []models.Observation{}
	}
	return observations, nil
}

// CreateObservation uploads a new observation as multipart/form-data.
// It is never retried; a failure leaves the decision to the user.
func (c *Client) CreateObservation(ctx context.Context, token string, cr *CreateRequest) (*models.Observation, error) {
	body, contentType, err := encodeCreateRequest(cr)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", OpCreate, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/observations/upload"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", OpCreate, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	return c.doObservation(ctx, OpCreate, req)
}

// IncrementView asks the backend to count one view by viewerID. The backend
// refuses to count an owner's own views and returns the observation unchanged.
func (c *Client) IncrementView(ctx context.Context, token string, id, viewerID int64) (*models.Observation, error) {
	payload, err := json.Marshal(struct {
		ViewerUserID int64 `json:"viewer_user_id"`
	}{viewerID})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", OpIncrementView, err)
	}

	reqURL := c.endpoint(fmt.Sprintf("/observations/%d/view", id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", OpIncrementView, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	return c.doObservation(ctx, OpIncrementView, req)
}

// doObservation sends a request that answers with a single observation.
func (c *Client) doObservation(ctx context.Context, op string, req *http.Request) (*models.Observation, error) {
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newResponseError(op, resp)
	}

	var obs models.Observation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return nil, fmt.Errorf("%s: decode observation: %w", op, err)
	}
	return &obs, nil
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeCreateRequest builds the multipart body: caption, latitude, longitude
// and one "images" part per image, each with its filename and content type.
func encodeCreateRequest(cr *CreateRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"caption", cr.Caption},
		{"latitude", strconv.FormatFloat(cr.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(cr.Longitude, 'f', -1, 64)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	for i, img := range cr.Images {
		filename := img.Filename
		if filename == "" {
			filename = fmt.Sprintf("image-%d", i+1)
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, bytes.NewReader(img.Data)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
