// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// maxErrorBodySize limits how much of an error response body is read
const maxErrorBodySize = 64 * 1024

// ConnectivityError means the backend could not be reached at all: DNS, dial,
// TLS, timeout, cancelled rate-limit wait or an open circuit breaker.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: observation service unreachable: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ResponseError is a non-2xx answer from the backend.
type ResponseError struct {
	Op         string
	StatusCode int
	// Detail is the server's own message, verbatim. Empty when the body had none.
	Detail string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: observation service returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: observation service returned %d", e.Op, e.StatusCode)
}

// Message returns the text to show a user: the server detail when present,
// otherwise a generic line with the status.
func (e *ResponseError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Observation service error (HTTP %d %s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsConnectivity reports whether err (or anything it wraps) is a *ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// AsResponseError unwraps a *ResponseError.
func AsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// newResponseError consumes resp.Body (bounded) and extracts the detail message.
func newResponseError(op string, resp *http.Response) *ResponseError {
	return &ResponseError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(readBodyForError(resp.Body)),
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

// errorBody matches {"detail": ...}. FastAPI sends a string for HTTPException and
// an array of {loc, msg, type} objects for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// parseDetail extracts a human readable message from an error body. Non-JSON
// bodies yield "" so callers fall back to the status text.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var items []validationItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
