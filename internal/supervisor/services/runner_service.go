// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package services

import (
	"context"
)

// ContextRunner is a component whose main loop runs until ctx is cancelled.
//
// Satisfied by *websocket.Hub and *mapview.Manager. Declared here so this
// package imports neither.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService supervises a ContextRunner under a fixed name.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService wraps runner as a suture.Service called name.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// NewWebSocketHubService supervises the snapshot push hub.
func NewWebSocketHubService(hub ContextRunner) *RunnerService {
	return NewRunnerService("websocket-hub", hub)
}

// NewSessionManagerService supervises the map session registry, which reaps
// idle sessions and drafts and closes everything on shutdown.
func NewSessionManagerService(manager ContextRunner) *RunnerService {
	return NewRunnerService("session-manager", manager)
}

// Serve implements suture.Service by delegating to RunWithContext.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.RunWithContext(ctx)
}

// String names the service in suture events.
func (r *RunnerService) String() string {
	return r.name
}
