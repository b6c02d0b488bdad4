// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/climbmap/internal/cache"
	"github.com/tomtom215/climbmap/internal/logging"
	"github.com/tomtom215/climbmap/internal/metrics"
	"github.com/tomtom215/climbmap/internal/models"
)

// Source says where a listing came from
type Source string

const (
	SourceLive        Source = "live"
	SourcePlaceholder Source = "placeholder"
)

// OfflineNotice is shown when the backend cannot be reached at all.
const OfflineNotice = "Unable to reach the observation service. Showing sample observations."

// Listing is the observation set a map session starts from.
type Listing struct {
	Observations []models.Observation `json:"observations"`
	Source       Source               `json:"source"`
	// Notice is empty for live data. For placeholder data it is OfflineNotice
	// or the backend's own error detail.
	Notice    string    `json:"notice,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Lister is the listing half of ObservationAPI
type Lister interface {
	ListObservations(ctx context.Context, opts ListOptions) ([]models.Observation, error)
}

// ListingLoader loads the listing and never fails: any error is replaced by
// the placeholder dataset plus a notice. Live results are shared for a short
// TTL so a burst of new sessions costs one backend call.
type ListingLoader struct {
	api   Lister
	cache *cache.Cache[Listing]
	now   func() time.Time
}

// NewListingLoader creates a loader. A zero ttl disables caching.
func NewListingLoader(api Lister, ttl time.Duration) *ListingLoader {
	return &ListingLoader{
		api:   api,
		cache: cache.New[Listing](ttl, time.Minute),
		now:   time.Now,
	}
}

// Load returns the listing, from cache when fresh.
func (l *ListingLoader) Load(ctx context.Context, opts ListOptions) Listing {
	key := listingKey(opts)
	if cached, ok := l.cache.Get(key); ok {
		metrics.RecordCacheAccess("listing", true)
		metrics.ListingLoads.WithLabelValues("cache").Inc()
		return cloneListing(cached)
	}
	metrics.RecordCacheAccess("listing", false)
	return l.fetch(ctx, opts)
}

// Refresh bypasses the cache and stores a fresh live result.
func (l *ListingLoader) Refresh(ctx context.Context, opts ListOptions) Listing {
	return l.fetch(ctx, opts)
}

// Invalidate drops every cached listing. Called after an observation is created.
func (l *ListingLoader) Invalidate() {
	l.cache.Clear()
}

// Close stops the cache sweeper.
func (l *ListingLoader) Close() {
	l.cache.Close()
}

func (l *ListingLoader) fetch(ctx context.Context, opts ListOptions) Listing {
	observations, err := l.api.ListObservations(ctx, opts)
	if err != nil {
		listing := Listing{
			Observations: models.PlaceholderObservations(),
			Source:       SourcePlaceholder,
			Notice:       noticeFor(err),
			FetchedAt:    l.now(),
		}
		logging.Ctx(ctx).Warn().Err(err).Str("notice", listing.Notice).
			Msg("Observation listing failed, using placeholder data")
		metrics.ListingLoads.WithLabelValues(string(SourcePlaceholder)).Inc()
		return listing
	}

	listing := Listing{
		Observations: observations,
		Source:       SourceLive,
		FetchedAt:    l.now(),
	}
	l.cache.Set(listingKey(opts), cloneListing(listing))
	metrics.ListingLoads.WithLabelValues(string(SourceLive)).Inc()
	return listing
}

// noticeFor picks the user-facing message for a listing failure.
func noticeFor(err error) string {
	if re, ok := AsResponseError(err); ok {
		return re.Message()
	}
	return OfflineNotice
}

func listingKey(opts ListOptions) string {
	return fmt.Sprintf("observations:%d:%d", opts.Skip, opts.Limit)
}

func cloneListing(l Listing) Listing {
	l.Observations = models.CloneObservations(l.Observations)
	return l
}
