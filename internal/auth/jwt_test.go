// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/climbmap/internal/config"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	m, err := NewJWTManager(&config.SecurityConfig{})
	if !errors.Is(err, ErrVerificationDisabled) {
		t.Errorf("err = %v, want ErrVerificationDisabled", err)
	}
	if m != nil {
		t.Error("expected nil manager")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.GenerateToken(42, "alex", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	id, ok := claims.ViewerID()
	if !ok || id != 42 {
		t.Errorf("ViewerID() = %d, %v, want 42, true", id, ok)
	}
	if claims.Username != "alex" {
		t.Errorf("Username = %q, want alex", claims.Username)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	m := newTestManager(t)

	expired, err := m.GenerateToken(1, "u", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	other, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: strings.Repeat("x", 40)})
	foreign, err := other.GenerateToken(1, "u", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", none},
		{"malformed", "not.a.valid.jwt.token"},
		{"garbage", "invalid_token_here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() expected error")
			}
		})
	}
}

func TestClaimsViewerID(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   int64
		wantOK bool
	}{
		{"user_id", Claims{UserID: 7}, 7, true},
		{"numeric sub", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "12"}}, 12, true},
		{"username sub", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alex"}}, 0, false},
		{"empty", Claims{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.claims.ViewerID()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ViewerID() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
