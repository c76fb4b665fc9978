// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/models"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "qe_session"

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// SessionID returns the session identifier carried in the jti claim
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// NewSessionID creates a random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// SignSession issues an HS256 token for the session
func SignSession(sessionID, kind, secret string, ttl time.Duration) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	now := time.Now()
	claims := SessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// ParseSession verifies the signature and expiry of a session token
func ParseSession(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	switch claims.Kind {
	case models.KindAnonymous, models.KindAdmin, models.KindVoter:
	default:
		return nil, fmt.Errorf("unknown session kind %q: %w", claims.Kind, ErrInvalidToken)
	}
	return claims, nil
}
