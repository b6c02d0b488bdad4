// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Upstream:
//     - Backend: The observation CRUD service (listing, upload, view counts)
//
//  2. Map pipeline:
//     - Map: Default viewport, settle delay, zoom threshold, grid size
//     - Session: Idle timeouts and limits for map sessions and drafts
//
//  3. Creation:
//     - Upload: Image count and size limits, caption length
//     - Preview: Preview rendering and storage (memory or Redis)
//
//  4. Serving:
//     - Server: HTTP listener settings
//     - Security: CORS, rate limiting, bearer token verification
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Map      MapConfig      `koanf:"map"`
	Session  SessionConfig  `koanf:"session"`
	Upload   UploadConfig   `koanf:"upload"`
	Preview  PreviewConfig  `koanf:"preview"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 3857)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig holds settings for the observation backend.
//
// The backend exposes:
//   - GET  {base}/observations/
//   - POST {base}/observations/upload
//   - POST {base}/observations/{id}/view
//
// Environment Variables:
//   - BACKEND_URL: Base URL, no path (default: http://localhost:8000)
//   - BACKEND_TIMEOUT: Per-request timeout (default: 15s)
//   - BACKEND_RATE_LIMIT_RPS: Outbound request rate, 0 disables (default: 20)
//   - BACKEND_RATE_LIMIT_BURST: Outbound burst (default: 40)
//   - BACKEND_LISTING_CACHE_TTL: Reuse window for listing responses (default: 5s)
//   - BACKEND_LISTING_RETRIES: Retries for HTTP 429 on the listing (default: 3)
type BackendConfig struct {
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
	ListingCacheTTL time.Duration `koanf:"listing_cache_ttl"`
	ListingRetries  int           `koanf:"listing_retries"`
	RetryBaseDelay  time.Duration `koanf:"retry_base_delay"`
}

// MapConfig holds the per-session viewport and aggregation settings.
//
// Environment Variables:
//   - MAP_DEFAULT_CENTER_LNG / MAP_DEFAULT_CENTER_LAT: Starting center
//   - MAP_DEFAULT_ZOOM: Starting zoom (default: 4)
//   - MAP_SETTLE_DELAY: Wait after map load before the first read (default: 100ms)
//   - MAP_MIN_ZOOM_LEVEL: Zoom at which markers replace clusters (default: 6)
//   - MAP_GRID_SIZE: Cells per axis in the clustering grid (default: 10)
type MapConfig struct {
	DefaultCenterLng float64       `koanf:"default_center_lng"`
	DefaultCenterLat float64       `koanf:"default_center_lat"`
	DefaultZoom      float64       `koanf:"default_zoom"`
	SettleDelay      time.Duration `koanf:"settle_delay"`
	MinZoomLevel     float64       `koanf:"min_zoom_level"`
	GridSize         int           `koanf:"grid_size"`
}

// SessionConfig bounds the number and lifetime of map sessions and drafts.
//
// Environment Variables:
//   - SESSION_IDLE_TIMEOUT: Idle time before a session or draft is reaped (default: 30m)
//   - SESSION_REAP_INTERVAL: How often the reaper runs (default: 1m)
//   - SESSION_MAX_SESSIONS: Maximum live map sessions (default: 10000)
//   - SESSION_MAX_DRAFTS: Maximum live creation drafts (default: 1000)
type SessionConfig struct {
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	ReapInterval time.Duration `koanf:"reap_interval"`
	MaxSessions  int           `koanf:"max_sessions"`
	MaxDrafts    int           `koanf:"max_drafts"`
}

// UploadConfig holds observation creation limits.
//
// Environment Variables:
//   - UPLOAD_MAX_IMAGES: Images per observation (default: 5)
//   - UPLOAD_MAX_IMAGE_BYTES: Size limit per image (default: 10MB)
//   - UPLOAD_MAX_CAPTION_LENGTH: Caption limit in characters (default: 500)
type UploadConfig struct {
	MaxImages        int   `koanf:"max_images"`
	MaxImageBytes    int64 `koanf:"max_image_bytes"`
	MaxCaptionLength int   `koanf:"max_caption_length"`
}

// PreviewConfig controls preview rendering and storage.
//
// Environment Variables:
//   - PREVIEW_STORE: memory or redis (default: memory)
//   - PREVIEW_MAX_DIMENSION: Longest preview edge in pixels (default: 512)
//   - PREVIEW_JPEG_QUALITY: JPEG quality 1-100 (default: 80)
//   - PREVIEW_TTL: Safety expiry for previews in Redis (default: 2h)
//   - REDIS_ADDR / REDIS_PASSWORD / REDIS_DB: Redis connection (store=redis)
//   - PREVIEW_KEY_PREFIX: Redis key prefix (default: climbmap:preview:)
type PreviewConfig struct {
	Store         string        `koanf:"store"`
	MaxDimension  int           `koanf:"max_dimension"`
	JPEGQuality   int           `koanf:"jpeg_quality"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	KeyPrefix     string        `koanf:"key_prefix"`
}

// SecurityConfig holds CORS, rate limiting and bearer token settings.
//
// JWTSecret is shared with the authentication service that issues bearer tokens.
// When empty, tokens are forwarded to the backend on upload but viewers are
// treated as anonymous for view counting.
//
// Environment Variables:
//   - CORS_ORIGINS: Comma-separated allowed origins (default: http://localhost:3000)
//   - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 300)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable inbound rate limiting (default: false)
//   - JWT_SECRET: HMAC secret for bearer token verification
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	JWTSecret         string        `koanf:"jwt_secret"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
