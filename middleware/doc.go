// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Sessions

Sessions.Load resolves the signed session cookie into an election.Actor
stored in the request context. Requests without a valid cookie get a new
anonymous session so that login forms can carry an anti-forgery token.

	actor := middleware.ActorFrom(r.Context())

Guards:

  - RequireAdmin: admin sessions only; GET redirects to /login, other
    methods get 401
  - RequireVoter: voter sessions of the election in {id}
  - RequireCSRF: POST, PUT, PATCH and DELETE must carry the session's
    token in the X-CSRF-Token header or a _csrf body field (403 otherwise)

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs completion with status and duration_ms.

# CORS Middleware

CORS wraps rs/cors with credentials enabled for the configured origins.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ServiceError(w, r, err)

ParseBody accepts JSON and form-encoded bodies.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Hashed and stored with each vote.
*/
package middleware
