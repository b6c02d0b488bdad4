// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateMap(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	if err := c.validateUpload(); err != nil {
		return err
	}

	if err := c.validatePreview(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be 'development' or 'production', got %q", c.Server.Environment)
	}
	return nil
}

// validateBackend validates the observation backend connection settings
func (c *Config) validateBackend() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateBaseURL(c.Backend.BaseURL, "BACKEND_URL"); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %v", c.Backend.Timeout)
	}
	if c.Backend.RateLimitRPS < 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT_RPS must not be negative, got %v", c.Backend.RateLimitRPS)
	}
	if c.Backend.RateLimitRPS > 0 && c.Backend.RateLimitBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled, got %d", c.Backend.RateLimitBurst)
	}
	if c.Backend.ListingCacheTTL < 0 {
		return fmt.Errorf("BACKEND_LISTING_CACHE_TTL must not be negative, got %v", c.Backend.ListingCacheTTL)
	}
	if c.Backend.ListingRetries < 0 || c.Backend.ListingRetries > 10 {
		return fmt.Errorf("BACKEND_LISTING_RETRIES must be between 0 and 10, got %d", c.Backend.ListingRetries)
	}
	return nil
}

func (c *Config) validateMap() error {
	if c.Map.DefaultCenterLat < -90 || c.Map.DefaultCenterLat > 90 {
		return fmt.Errorf("MAP_DEFAULT_CENTER_LAT must be between -90 and 90, got %v", c.Map.DefaultCenterLat)
	}
	if c.Map.DefaultCenterLng < -180 || c.Map.DefaultCenterLng > 180 {
		return fmt.Errorf("MAP_DEFAULT_CENTER_LNG must be between -180 and 180, got %v", c.Map.DefaultCenterLng)
	}
	if c.Map.DefaultZoom < 0 || c.Map.DefaultZoom > 24 {
		return fmt.Errorf("MAP_DEFAULT_ZOOM must be between 0 and 24, got %v", c.Map.DefaultZoom)
	}
	if c.Map.MinZoomLevel < 0 || c.Map.MinZoomLevel > 24 {
		return fmt.Errorf("MAP_MIN_ZOOM_LEVEL must be between 0 and 24, got %v", c.Map.MinZoomLevel)
	}
	if c.Map.SettleDelay < 0 {
		return fmt.Errorf("MAP_SETTLE_DELAY must not be negative, got %v", c.Map.SettleDelay)
	}
	if c.Map.GridSize < 1 || c.Map.GridSize > 1000 {
		return fmt.Errorf("MAP_GRID_SIZE must be between 1 and 1000, got %d", c.Map.GridSize)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTimeout < time.Minute {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be at least 1m, got %v", c.Session.IdleTimeout)
	}
	if c.Session.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_REAP_INTERVAL must be positive, got %v", c.Session.ReapInterval)
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("SESSION_MAX_SESSIONS must be at least 1, got %d", c.Session.MaxSessions)
	}
	if c.Session.MaxDrafts < 1 {
		return fmt.Errorf("SESSION_MAX_DRAFTS must be at least 1, got %d", c.Session.MaxDrafts)
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxImages < 1 {
		return fmt.Errorf("UPLOAD_MAX_IMAGES must be at least 1, got %d", c.Upload.MaxImages)
	}
	if c.Upload.MaxImageBytes < 1 {
		return fmt.Errorf("UPLOAD_MAX_IMAGE_BYTES must be positive, got %d", c.Upload.MaxImageBytes)
	}
	if c.Upload.MaxCaptionLength < 1 {
		return fmt.Errorf("UPLOAD_MAX_CAPTION_LENGTH must be at least 1, got %d", c.Upload.MaxCaptionLength)
	}
	return nil
}

// validatePreview validates preview rendering and the selected store backend
func (c *Config) validatePreview() error {
	switch c.Preview.Store {
	case "memory":
	case "redis":
		if c.Preview.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when PREVIEW_STORE=redis")
		}
		if err := validateHostPort(c.Preview.RedisAddr, "REDIS_ADDR"); err != nil {
			return err
		}
		if c.Preview.TTL <= 0 {
			return fmt.Errorf("PREVIEW_TTL must be positive when PREVIEW_STORE=redis, got %v", c.Preview.TTL)
		}
	default:
		return fmt.Errorf("PREVIEW_STORE must be 'memory' or 'redis', got %q", c.Preview.Store)
	}
	if c.Preview.MaxDimension < 16 {
		return fmt.Errorf("PREVIEW_MAX_DIMENSION must be at least 16, got %d", c.Preview.MaxDimension)
	}
	if c.Preview.JPEGQuality < 1 || c.Preview.JPEGQuality > 100 {
		return fmt.Errorf("PREVIEW_JPEG_QUALITY must be between 1 and 100, got %d", c.Preview.JPEGQuality)
	}
	return nil
}

// validateSecurity validates CORS, rate limiting and token settings
func (c *Config) validateSecurity() error {
	if c.Server.Environment == "production" {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.Security.JWTSecret))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
