// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, session token, and anti-forgery utilities.

# Passwords

Administrator and voter passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password, bcrypt.DefaultCost)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

# Session Tokens

The session cookie holds an HS256 JWT whose jti claim is the session id and
whose typ claim is the session kind (anonymous, admin, voter):

	token, err := auth.SignSession(auth.NewSessionID(), models.KindAdmin, secret, ttl)
	claims, err := auth.ParseSession(token, secret)

Only the signature and expiry are checked here; authenticated sessions must
also exist in storage.

# Anti-forgery Tokens

CSRF tokens are HMAC-SHA256 of the session id, so they are deterministic and
need no storage:

	token := auth.CSRFToken(sessionID, secret)
	err := auth.ValidateCSRFToken(sessionID, token, secret)

# IP Hashing

Votes record a salted hash of the client address for auditing:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
