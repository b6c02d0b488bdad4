// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/tomtom215/climbmap/internal/backend"
	"github.com/tomtom215/climbmap/internal/models"
)

// pngBytes returns a PNG of the given size. Different sizes give different bytes.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// gpsTIFF builds a little-endian TIFF whose only content is a GPS IFD.
func gpsTIFF(lat, lng float64) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 128)

	copy(buf[0:], "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)

	entry := func(off int, tag, typ uint16, count, value uint32) {
		le.PutUint16(buf[off:], tag)
		le.PutUint16(buf[off+2:], typ)
		le.PutUint32(buf[off+4:], count)
		le.PutUint32(buf[off+8:], value)
	}

	// IFD0: GPSInfoIFDPointer -> 26
	le.PutUint16(buf[8:], 1)
	entry(10, 0x8825, 4, 1, 26)
	le.PutUint32(buf[22:], 0)

	ns, ew := byte('N'), byte('E')
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	if lng < 0 {
		ew, lng = 'W', -lng
	}

	// GPS IFD at 26 with 4 entries; rationals at 80 and 104.
	le.PutUint16(buf[26:], 4)
	entry(28, 0x0001, 2, 2, uint32(ns))
	entry(40, 0x0002, 5, 3, 80)
	entry(52, 0x0003, 2, 2, uint32(ew))
	entry(64, 0x0004, 5, 3, 104)
	le.PutUint32(buf[76:], 0)

	putDMS := func(off int, deg float64) {
		d := math.Floor(deg)
		m := math.Floor((deg - d) * 60)
		s := math.Round(((deg-d)*60-m)*60*10000) / 10000
		le.PutUint32(buf[off:], uint32(d))
		le.PutUint32(buf[off+4:], 1)
		le.PutUint32(buf[off+8:], uint32(m))
		le.PutUint32(buf[off+12:], 1)
		le.PutUint32(buf[off+16:], uint32(math.Round(s*10000)))
		le.PutUint32(buf[off+20:], 10000)
	}
	putDMS(80, lat)
	putDMS(104, lng)

	return buf
}

// fakeExtractor reports GPS for registered payloads only.
type fakeExtractor struct {
	points map[string]GPS
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{points: make(map[string]GPS)}
}

func (f *fakeExtractor) with(data []byte, gps GPS) []byte {
	f.points[string(data)] = gps
	return data
}

func (f *fakeExtractor) extract(data []byte) (GPS, bool) {
	gps, ok := f.points[string(data)]
	return gps, ok
}

// countingStore wraps a memory store and counts releases per key.
type countingStore struct {
	*MemoryPreviewStore

	mu       sync.Mutex
	puts     int
	releases map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{
		MemoryPreviewStore: NewMemoryPreviewStore(DefaultPreviewTTL),
		releases:           make(map[string]int),
	}
}

func (s *countingStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.MemoryPreviewStore.Put(ctx, key, data)
}

func (s *countingStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	s.releases[key]++
	s.mu.Unlock()
	return s.MemoryPreviewStore.Release(ctx, key)
}

func (s *countingStore) releaseCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases[key]
}

// fakeCreator records create calls and returns a canned result.
type fakeCreator struct {
	mu    sync.Mutex
	calls []*backend.CreateRequest
	token string
	err   error
}

func (f *fakeCreator) CreateObservation(_ context.Context, token string, req *backend.CreateRequest) (*models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	urls := make([]string, len(req.Images))
	for i := range urls {
		urls[i] = "https://cdn.example.com/" + req.Images[i].Filename
	}
	return &models.Observation{
		ID:        99,
		UserID:    7,
		Caption:   req.Caption,
		ImageURLs: urls,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}, nil
}
