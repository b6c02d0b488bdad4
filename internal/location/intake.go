// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/metrics"
)

// Defaults for the creation form.
const (
	DefaultMaxImages        = 5
	DefaultMaxImageBytes    = 10 << 20
	DefaultMaxCaptionLength = 500
)

// File is one uploaded image as received from the browser.
type File struct {
	Filename string
	Data     []byte
}

// Rejection explains why a single file was not staged.
type Rejection struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// admitted is a file that passed intake, with its sniffed content type.
type admitted struct {
	file        File
	contentType string
}

// Intake holds the limits applied to staged images and submissions.
type Intake struct {
	MaxImages        int
	MaxImageBytes    int64
	MaxCaptionLength int
}

// DefaultIntake returns the standard limits: 5 images of at most 10MB, 500 character captions.
func DefaultIntake() Intake {
	return Intake{
		MaxImages:        DefaultMaxImages,
		MaxImageBytes:    DefaultMaxImageBytes,
		MaxCaptionLength: DefaultMaxCaptionLength,
	}
}

// NewIntake builds limits from configuration, keeping defaults for unset values.
func NewIntake(cfg *config.UploadConfig) Intake {
	in := DefaultIntake()
	if cfg == nil {
		return in
	}
	if cfg.MaxImages > 0 {
		in.MaxImages = cfg.MaxImages
	}
	if cfg.MaxImageBytes > 0 {
		in.MaxImageBytes = cfg.MaxImageBytes
	}
	if cfg.MaxCaptionLength > 0 {
		in.MaxCaptionLength = cfg.MaxCaptionLength
	}
	return in
}

// Check validates one file. It returns the sniffed content type, or a rejection
// message naming the file.
func (in Intake) Check(f File) (string, *Rejection) {
	name := displayName(f.Filename)

	mt := mimetype.Detect(f.Data)
	contentType := mt.String()
	if !strings.HasPrefix(contentType, "image/") {
		metrics.ImageRejections.WithLabelValues("type").Inc()
		return "", &Rejection{
			Filename: f.Filename,
			Reason:   fmt.Sprintf("%s is not an image file", name),
		}
	}

	if int64(len(f.Data)) > in.MaxImageBytes {
		metrics.ImageRejections.WithLabelValues("size").Inc()
		return "", &Rejection{
			Filename: f.Filename,
			Reason:   fmt.Sprintf("%s is larger than %s", name, formatBytes(in.MaxImageBytes)),
		}
	}

	return contentType, nil
}

// admit checks a batch against the remaining capacity. Files past the cap and
// files failing Check are rejected individually; the rest keep their order.
func (in Intake) admit(staged int, files []File) ([]admitted, []Rejection) {
	var accepted []admitted
	var rejected []Rejection

	for _, f := range files {
		if staged+len(accepted) >= in.MaxImages {
			metrics.ImageRejections.WithLabelValues("capacity").Inc()
			rejected = append(rejected, Rejection{
				Filename: f.Filename,
				Reason: fmt.Sprintf("%s was not added: an observation can have at most %d images",
					displayName(f.Filename), in.MaxImages),
			})
			continue
		}

		contentType, rej := in.Check(f)
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		accepted = append(accepted, admitted{file: f, contentType: contentType})
	}

	return accepted, rejected
}

func displayName(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return "File"
	}
	return filename
}

// formatBytes renders a limit the way users expect to read it ("10MB").
func formatBytes(n int64) string {
	const mb = 1 << 20
	const kb = 1 << 10
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
