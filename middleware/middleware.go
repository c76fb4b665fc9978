// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
)

// maxBodyBytes caps request bodies read by this package
const maxBodyBytes = 1 << 20

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, election.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, election.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, election.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, election.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, election.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, election.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError writes err with the status it maps to. Unexpected errors are
// logged and their detail is withheld from the client.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !election.IsExpected(err) {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "")
		return
	}
	slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	ErrorResponse(w, StatusFor(err), err.Error())
}

// WantsJSON reports whether the client asked for a JSON response
func WantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}

// Done finishes a successful mutation: a JSON body for JSON clients,
// otherwise a redirect to location
func Done(w http.ResponseWriter, r *http.Request, location string, statusCode int, data interface{}) {
	if WantsJSON(r) {
		JSONResponse(w, statusCode, data)
		return
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return err
	}
	return nil
}

// ParseBody decodes a JSON or form-encoded body into v. Form fields are
// mapped onto JSON keys, with "true" and "false" read as booleans.
func ParseBody(r *http.Request, v interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" && mediaType != "multipart/form-data" {
		return ParseJSONBody(r, v)
	}

	if err := r.ParseForm(); err != nil {
		return err
	}
	fields := make(map[string]interface{}, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		switch values[0] {
		case "true":
			fields[key] = true
		case "false":
			fields[key] = false
		default:
			fields[key] = values[0]
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to re-encode form: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// CORS allows credentialed cross-origin requests from the given origins.
// No origins means any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", CSRFHeader},
		AllowCredentials: true,
	})
	return c.Handler
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Take first IP in chain
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexAny(xff, ", "); i >= 0 {
			return xff[:i]
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}
