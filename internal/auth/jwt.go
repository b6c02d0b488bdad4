// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/climbmap/internal/config"
)

// ErrVerificationDisabled is returned by NewJWTManager when no secret is configured.
var ErrVerificationDisabled = errors.New("JWT_SECRET not set: viewer identity verification disabled")

// Claims are the bearer token claims issued by the authentication service.
// user_id is the numeric account id; older tokens carry it only in sub.
type Claims struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// ViewerID returns the numeric user id from user_id, falling back to a numeric sub.
func (c *Claims) ViewerID() (int64, bool) {
	if c.UserID > 0 {
		return c.UserID, true
	}
	if id, err := strconv.ParseInt(c.Subject, 10, 64); err == nil && id > 0 {
		return id, true
	}
	return 0, false
}

// JWTManager validates HS256 tokens signed with the secret shared with the
// authentication service.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a token manager from the security configuration.
//
// Returns ErrVerificationDisabled when JWT_SECRET is empty. Callers then run
// without verification: tokens are still forwarded to the backend (which
// verifies them itself) but every viewer is anonymous for view counting.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrVerificationDisabled
	}
	return &JWTManager{secret: []byte(cfg.JWTSecret)}, nil
}

// GenerateToken signs a token for userID valid for ttl. Used by tests and local tooling;
// production tokens come from the authentication service.
func (m *JWTManager) GenerateToken(userID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm and expiry and returns the claims.
// Tokens signed with anything other than HMAC are rejected.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
