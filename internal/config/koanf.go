// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/climbmap/config.yaml",
	"/etc/climbmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8000",
			Timeout:         15 * time.Second,
			RateLimitRPS:    20,
			RateLimitBurst:  40,
			ListingCacheTTL: 5 * time.Second,
			ListingRetries:  3,
			RetryBaseDelay:  time.Second,
		},
		Map: MapConfig{
			DefaultCenterLng: -98.5795,
			DefaultCenterLat: 39.8283,
			DefaultZoom:      4,
			SettleDelay:      100 * time.Millisecond,
			MinZoomLevel:     6,
			GridSize:         10,
		},
		Session: SessionConfig{
			IdleTimeout:  30 * time.Minute,
			ReapInterval: time.Minute,
			MaxSessions:  10000,
			MaxDrafts:    1000,
		},
		Upload: UploadConfig{
			MaxImages:        5,
			MaxImageBytes:    10 << 20,
			MaxCaptionLength: 500,
		},
		Preview: PreviewConfig{
			Store:        "memory",
			MaxDimension: 512,
			JPEGQuality:  80,
			TTL:          2 * time.Hour,
			RedisAddr:    "localhost:6379",
			KeyPrefix:    "climbmap:preview:",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
//
// Loading order (later sources override earlier):
//  1. Built-in defaults (from defaultConfig())
//  2. Config file (if found: config.yaml, /etc/climbmap/config.yaml)
//  3. Environment variables (mapped by envTransformFunc)
//
// The loaded configuration is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Observation backend
	"backend_url":               "backend.base_url",
	"backend_timeout":           "backend.timeout",
	"backend_rate_limit_rps":    "backend.rate_limit_rps",
	"backend_rate_limit_burst":  "backend.rate_limit_burst",
	"backend_listing_cache_ttl": "backend.listing_cache_ttl",
	"backend_listing_retries":   "backend.listing_retries",
	"backend_retry_base_delay":  "backend.retry_base_delay",

	// Map pipeline
	"map_default_center_lng": "map.default_center_lng",
	"map_default_center_lat": "map.default_center_lat",
	"map_default_zoom":       "map.default_zoom",
	"map_settle_delay":       "map.settle_delay",
	"map_min_zoom_level":     "map.min_zoom_level",
	"map_grid_size":          "map.grid_size",

	// Sessions and drafts
	"session_idle_timeout":  "session.idle_timeout",
	"session_reap_interval": "session.reap_interval",
	"session_max_sessions":  "session.max_sessions",
	"session_max_drafts":    "session.max_drafts",

	// Uploads
	"upload_max_images":         "upload.max_images",
	"upload_max_image_bytes":    "upload.max_image_bytes",
	"upload_max_caption_length": "upload.max_caption_length",

	// Previews
	"preview_store":         "preview.store",
	"preview_max_dimension": "preview.max_dimension",
	"preview_jpeg_quality":  "preview.jpeg_quality",
	"preview_ttl":           "preview.ttl",
	"preview_key_prefix":    "preview.key_prefix",
	"redis_addr":            "preview.redis_addr",
	"redis_password":        "preview.redis_password",
	"redis_db":              "preview.redis_db",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"jwt_secret":          "security.jwt_secret",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BACKEND_URL -> backend.base_url
//   - MAP_MIN_ZOOM_LEVEL -> map.min_zoom_level
//   - REDIS_ADDR -> preview.redis_addr
//
// Unmapped variables return "" and are skipped, so unrelated environment
// variables cannot pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
