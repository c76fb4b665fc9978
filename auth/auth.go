// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCSRFToken   = errors.New("invalid csrf token")
	ErrInvalidToken       = errors.New("invalid token format")
)

// HashPassword returns the bcrypt hash of password at the given cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CSRFToken derives the anti-forgery token bound to a session.
// This is deterministic, so nothing beyond the session id needs storing.
func CSRFToken(sessionID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("csrf:"))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding so the token fits form fields
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateCSRFToken checks the token against the one derived for the session
func ValidateCSRFToken(sessionID, token, secret string) error {
	if sessionID == "" || token == "" {
		return ErrInvalidCSRFToken
	}
	expected := CSRFToken(sessionID, secret)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidCSRFToken
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for auditing duplicates
	return hex.EncodeToString(sum[:8])
}
