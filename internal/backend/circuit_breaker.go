// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
)

// BreakerName labels the backend breaker in logs and metrics
const BreakerName = "observation-backend"

// CircuitBreakerClient wraps Client with the circuit breaker pattern so a dead
// backend fails fast instead of tying up every map session for a full timeout.
//
// Breaker rejections surface as *ConnectivityError, which callers already treat
// as "backend unreachable".
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// BreakerSettings returns the breaker configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 30 second open period before probing again
//   - Opens after a 60% failure rate with a minimum of 10 requests
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: isSuccessful,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	}
}

// NewCircuitBreakerClient creates a backend client protected by a circuit breaker.
func NewCircuitBreakerClient(cfg *config.BackendConfig) *CircuitBreakerClient {
	return newCircuitBreakerClient(NewClient(cfg), BreakerSettings(BreakerName))
}

//nolint:gocritic // gobreaker.Settings is passed by value by the library itself
func newCircuitBreakerClient(client *Client, settings gobreaker.Settings) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(settings.Name).Set(0)

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[any](settings),
		name:   settings.Name,
	}
}

// State returns the current breaker state for health reporting.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// execute runs fn through the breaker. Rejections become *ConnectivityError.
func (cbc *CircuitBreakerClient) execute(op string, fn func() (any, error)) (any, error) {
	result, err := cbc.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Err(err).Str("op", op).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &ConnectivityError{Op: op, Err: err}
	}

	if isSuccessful(err) {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	} else {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		counts := cbc.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
	}
	return nil, err
}

// castResult type-asserts a breaker result
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ListObservations fetches the listing with circuit breaker protection
func (cbc *CircuitBreakerClient) ListObservations(ctx context.Context, opts ListOptions) ([]models.Observation, error) {
	return castResult[[]models.Observation](cbc.execute(OpList, func() (any, error) {
		return cbc.client.ListObservations(ctx, opts)
	}))
}

// CreateObservation uploads an observation with circuit breaker protection
func (cbc *CircuitBreakerClient) CreateObservation(ctx context.Context, token string, req *CreateRequest) (*models.Observation, error) {
	return castResult[*models.Observation](cbc.execute(OpCreate, func() (any, error) {
		return cbc.client.CreateObservation(ctx, token, req)
	}))
}

// IncrementView counts a view with circuit breaker protection
func (cbc *CircuitBreakerClient) IncrementView(ctx context.Context, token string, id, viewerID int64) (*models.Observation, error) {
	return castResult[*models.Observation](cbc.execute(OpIncrementView, func() (any, error) {
		return cbc.client.IncrementView(ctx, token, id, viewerID)
	}))
}
