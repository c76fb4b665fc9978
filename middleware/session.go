// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
)

const (
	// CSRFHeader carries the anti-forgery token on scripted requests
	CSRFHeader = "X-CSRF-Token"
	// CSRFField carries the anti-forgery token in JSON and form bodies
	CSRFField = "_csrf"
)

type actorKey struct{}

// ActorFrom returns the caller identity resolved by Sessions.Load.
// Requests that never passed through Load are anonymous.
func ActorFrom(ctx context.Context) election.Actor {
	actor, ok := ctx.Value(actorKey{}).(election.Actor)
	if !ok {
		return election.Anonymous("")
	}
	return actor
}

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor election.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Sessions resolves the session cookie into an Actor and guards routes by
// identity and anti-forgery token.
type Sessions struct {
	svc    *election.Service
	secret string
	ttl    time.Duration
	secure bool
}

func NewSessions(svc *election.Service, cfg cliparse.Config) *Sessions {
	return &Sessions{
		svc:    svc,
		secret: cfg.SessionSecret,
		ttl:    cfg.SessionTTL,
		secure: cfg.CookieSecure,
	}
}

// Load puts the caller's Actor in the request context. Requests without a
// valid session get a fresh anonymous one.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := s.resolve(r)
		if !ok {
			actor = election.Anonymous(auth.NewSessionID())
			if err := s.setCookie(w, actor); err != nil {
				slog.Error("failed to issue session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (s *Sessions) resolve(r *http.Request) (election.Actor, bool) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return election.Actor{}, false
	}

	claims, err := auth.ParseSession(cookie.Value, s.secret)
	if err != nil {
		slog.Debug("rejected session cookie", "error", err)
		return election.Actor{}, false
	}
	if claims.Kind == models.KindAnonymous {
		return election.Anonymous(claims.SessionID()), true
	}

	actor, err := s.svc.ResolveSession(r.Context(), claims.SessionID(), claims.Kind)
	if err != nil {
		if !errors.Is(err, election.ErrUnauthorized) {
			slog.Error("failed to resolve session", "error", err)
		}
		return election.Actor{}, false
	}
	return actor, true
}

// Start replaces the caller's session with a persisted one for actor
func (s *Sessions) Start(w http.ResponseWriter, r *http.Request, actor election.Actor) error {
	current := ActorFrom(r.Context())
	if current.Kind != models.KindAnonymous && current.SessionID != "" {
		if err := s.svc.CloseSession(r.Context(), current.SessionID); err != nil {
			return err
		}
	}

	opened, err := s.svc.OpenSession(r.Context(), actor, s.ttl)
	if err != nil {
		return err
	}
	return s.setCookie(w, opened)
}

// End deletes the caller's session and clears the cookie
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) error {
	current := ActorFrom(r.Context())
	if current.Kind != models.KindAnonymous && current.SessionID != "" {
		if err := s.svc.CloseSession(r.Context(), current.SessionID); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) setCookie(w http.ResponseWriter, actor election.Actor) error {
	token, err := auth.SignSession(actor.SessionID, actor.Kind, s.secret, s.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CSRFToken returns the anti-forgery token of the caller's session
func (s *Sessions) CSRFToken(r *http.Request) string {
	return auth.CSRFToken(ActorFrom(r.Context()).SessionID, s.secret)
}

// RequireCSRF rejects state-changing requests whose anti-forgery token does
// not match the session
func (s *Sessions) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next(w, r)
			return
		}

		token, err := csrfFromRequest(r)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		sid := ActorFrom(r.Context()).SessionID
		if err := auth.ValidateCSRFToken(sid, token, s.secret); err != nil {
			ErrorResponse(w, http.StatusForbidden, "Missing or invalid anti-forgery token")
			return
		}
		next(w, r)
	}
}

// csrfFromRequest finds the token in the header or the body. JSON bodies
// are restored so handlers can decode them again.
func csrfFromRequest(r *http.Request) (string, error) {
	if token := r.Header.Get(CSRFHeader); token != "" {
		return token, nil
	}
	if r.Body == nil {
		return "", nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.PostForm.Get(CSRFField), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return "", err
		}
		return r.PostFormValue(CSRFField), nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	r.Body.Close()
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var envelope struct {
		CSRF string `json:"_csrf"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// not a JSON object; the handler reports the malformed body
		return "", nil
	}
	return envelope.CSRF, nil
}

// RequireAdmin lets admin sessions through. Others are sent to the login
// page on GET and refused otherwise.
func (s *Sessions) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()).IsAdmin() {
			next(w, r)
			return
		}
		if r.Method == http.MethodGet {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ErrorResponse(w, http.StatusUnauthorized, "Admin session required")
	}
}

// RequireVoter lets through voter sessions scoped to the election in the
// {id} path segment
func (s *Sessions) RequireVoter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "Invalid election ID")
			return
		}
		if ActorFrom(r.Context()).IsVoterOf(id) {
			next(w, r)
			return
		}
		if r.Method == http.MethodGet {
			http.Redirect(w, r, "/public/"+strconv.FormatInt(id, 10), http.StatusFound)
			return
		}
		ErrorResponse(w, http.StatusUnauthorized, "Voter session required")
	}
}
