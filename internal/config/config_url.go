// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// validateBaseURL checks that rawURL is an http(s) origin the backend client
// can append "/observations/..." to. A single trailing slash is tolerated.
func validateBaseURL(rawURL, envVar string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", envVar, err)
	}

	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%s must use http or https, got scheme %q", envVar, u.Scheme)
	case u.Host == "":
		return fmt.Errorf("%s is missing a host", envVar)
	case strings.TrimSuffix(u.Path, "/") != "":
		return fmt.Errorf("%s must be the service origin, remove path %q", envVar, u.Path)
	case u.RawQuery != "" || u.Fragment != "":
		return fmt.Errorf("%s must not carry a query or fragment", envVar)
	}
	return nil
}

// validateHostPort checks a host:port pair such as REDIS_ADDR. An empty host
// is allowed (go-redis dials localhost).
func validateHostPort(addr, envVar string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s must be host:port, got %q: %w", envVar, addr, err)
	}
	if port == "" {
		return fmt.Errorf("%s is missing a port", envVar)
	}
	return nil
}
