// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"time"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/tomtom215/climbmap/internal/cache"
	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/metrics"
)

// Preview store kinds accepted by NewPreviewStore.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Preview rendering defaults.
const (
	DefaultPreviewDimension = 512
	DefaultPreviewQuality   = 80
	DefaultPreviewTTL       = 2 * time.Hour
)

// ErrPreviewNotFound is returned when a preview was never stored, was released,
// or has expired.
var ErrPreviewNotFound = errors.New("preview not found")

// PreviewStore holds rendered previews keyed by image id.
type PreviewStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Release(ctx context.Context, key string) error
	Close() error
}

// NewPreviewStore creates the store selected by cfg.Store.
func NewPreviewStore(cfg *config.PreviewConfig) (PreviewStore, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}

	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryPreviewStore(ttl), nil
	case StoreRedis:
		return NewRedisPreviewStore(cfg)
	default:
		return nil, fmt.Errorf("unknown preview store %q", cfg.Store)
	}
}

// MemoryPreviewStore keeps previews in process memory with a TTL as a backstop
// for drafts that are never released.
type MemoryPreviewStore struct {
	cache *cache.Cache[[]byte]
}

// NewMemoryPreviewStore creates an in-memory store.
func NewMemoryPreviewStore(ttl time.Duration) *MemoryPreviewStore {
	return &MemoryPreviewStore{cache: cache.New[[]byte](ttl, ttl/4)}
}

func (s *MemoryPreviewStore) Put(_ context.Context, key string, data []byte) error {
	s.cache.Set(key, data)
	s.report()
	return nil
}

func (s *MemoryPreviewStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.cache.Get(key)
	metrics.RecordCacheAccess("preview", ok)
	if !ok {
		return nil, ErrPreviewNotFound
	}
	return data, nil
}

func (s *MemoryPreviewStore) Release(_ context.Context, key string) error {
	s.cache.Delete(key)
	s.report()
	return nil
}

// Len returns the number of stored previews.
func (s *MemoryPreviewStore) Len() int {
	return int(s.cache.GetStats().TotalKeys)
}

func (s *MemoryPreviewStore) Close() error {
	s.cache.Close()
	return nil
}

func (s *MemoryPreviewStore) report() {
	metrics.PreviewsStored.WithLabelValues(StoreMemory).Set(float64(s.cache.GetStats().TotalKeys))
}

// Renderer downscales staged images into JPEG previews.
type Renderer struct {
	MaxDimension int
	Quality      int
}

// NewRenderer builds a renderer from configuration, keeping defaults for unset values.
func NewRenderer(cfg *config.PreviewConfig) Renderer {
	r := Renderer{MaxDimension: DefaultPreviewDimension, Quality: DefaultPreviewQuality}
	if cfg == nil {
		return r
	}
	if cfg.MaxDimension > 0 {
		r.MaxDimension = cfg.MaxDimension
	}
	if cfg.JPEGQuality > 0 && cfg.JPEGQuality <= 100 {
		r.Quality = cfg.JPEGQuality
	}
	return r
}

// Render decodes an image (JPEG, PNG, GIF or WebP), fits it within
// MaxDimension×MaxDimension and encodes it as JPEG.
func (r Renderer) Render(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := resizeToFit(src, r.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.Quality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if hs := float64(maxDim) / float64(h); hs < scale {
		scale = hs
	}
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
