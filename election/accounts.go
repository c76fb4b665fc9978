// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
)

const minPasswordLen = 8

// SignUp registers a new admin account
func (s *Service) SignUp(ctx context.Context, req models.SignupRequest) (models.Admin, error) {
	const op = "election.SignUp"

	firstName := strings.TrimSpace(req.FirstName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if firstName == "" {
		return models.Admin{}, fail(op, ErrInvalidInput, "first name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Admin{}, fail(op, ErrInvalidInput, "a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return models.Admin{}, fail(op, ErrInvalidInput, "password must be at least %d characters", minPasswordLen)
	}

	hash, err := auth.HashPassword(req.Password, s.opts.PasswordCost)
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	admin, err := s.store.Queries().CreateAdmin(ctx, models.Admin{
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		CreatedAt: s.now(),
	}, hash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Admin{}, fail(op, ErrConflict, "email is already registered")
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("admin signed up", slog.String("op", op), slog.Int64("admin_id", admin.ID))
	return admin, nil
}

// SignIn checks admin credentials
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Admin, error) {
	const op = "election.SignIn"

	q := s.store.Queries()
	if n, err := q.DeleteExpiredSessions(ctx, s.now()); err != nil {
		s.log.Warn("failed to purge sessions", slog.String("op", op), errAttr(err))
	} else if n > 0 {
		s.log.Debug("purged expired sessions", slog.String("op", op), slog.Int64("count", n))
	}

	admin, hash, err := q.AdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Admin{}, fail(op, ErrUnauthorized, "invalid email or password")
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := auth.CheckPassword(hash, password); err != nil {
		s.log.Info("invalid credentials", slog.String("op", op), slog.Int64("admin_id", admin.ID))
		return models.Admin{}, fail(op, ErrUnauthorized, "invalid email or password")
	}
	return admin, nil
}

// VoterSignIn checks a voter's credentials for one launched election
func (s *Service) VoterSignIn(ctx context.Context, electionID int64, handle, password string) (models.Voter, error) {
	const op = "election.VoterSignIn"

	q := s.store.Queries()
	e, err := q.Election(ctx, electionID)
	if err != nil {
		return models.Voter{}, fromStorage(op, err)
	}
	if e.Status != models.StatusLaunched {
		return models.Voter{}, fail(op, ErrForbidden, "election is not open for voting")
	}

	voter, hash, err := q.VoterByHandle(ctx, electionID, strings.TrimSpace(handle))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Voter{}, fail(op, ErrUnauthorized, "invalid voter id or password")
		}
		return models.Voter{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := auth.CheckPassword(hash, password); err != nil {
		return models.Voter{}, fail(op, ErrUnauthorized, "invalid voter id or password")
	}
	return voter, nil
}

// OpenSession persists an authenticated session for the actor and returns
// the actor carrying the new session id
func (s *Service) OpenSession(ctx context.Context, actor Actor, ttl time.Duration) (Actor, error) {
	const op = "election.OpenSession"

	if actor.Kind != models.KindAdmin && actor.Kind != models.KindVoter {
		return Actor{}, fail(op, ErrInvalidInput, "cannot persist %s session", actor.Kind)
	}

	now := s.now()
	actor.SessionID = auth.NewSessionID()
	err := s.store.Queries().CreateSession(ctx, storage.Session{
		ID:         actor.SessionID,
		Kind:       actor.Kind,
		AdminID:    actor.AdminID,
		VoterID:    actor.VoterID,
		ElectionID: actor.ElectionID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	})
	if err != nil {
		return Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	return actor, nil
}

// ResolveSession returns the actor of a live session of the given kind
func (s *Service) ResolveSession(ctx context.Context, sessionID, kind string) (Actor, error) {
	const op = "election.ResolveSession"

	sess, err := s.store.Queries().SessionByID(ctx, sessionID, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Actor{}, fail(op, ErrUnauthorized, "session expired or signed out")
		}
		return Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	if sess.Kind != kind {
		return Actor{}, fail(op, ErrUnauthorized, "session kind mismatch")
	}

	return Actor{
		Kind:       sess.Kind,
		SessionID:  sess.ID,
		AdminID:    sess.AdminID,
		VoterID:    sess.VoterID,
		ElectionID: sess.ElectionID,
	}, nil
}

func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	const op = "election.CloseSession"

	if err := s.store.Queries().DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
