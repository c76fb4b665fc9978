// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

// Session is an authenticated admin or voter session row.
type Session struct {
	ID         string
	Kind       string
	AdminID    int64
	VoterID    int64
	ElectionID int64
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (q *Queries) CreateAdmin(ctx context.Context, admin models.Admin, passHash string) (models.Admin, error) {
	const op = "storage.CreateAdmin"

	err := q.db.QueryRowContext(ctx, `
		INSERT INTO admin (first_name, last_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, admin.FirstName, admin.LastName, admin.Email, passHash, toMillis(admin.CreatedAt)).Scan(&admin.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}
	return admin, nil
}

// AdminByEmail returns the admin and its password hash
func (q *Queries) AdminByEmail(ctx context.Context, email string) (models.Admin, string, error) {
	const op = "storage.AdminByEmail"

	var admin models.Admin
	var passHash string
	var createdAt int64
	err := q.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, created_at
		FROM admin
		WHERE email = $1
	`, email).Scan(&admin.ID, &admin.FirstName, &admin.LastName, &admin.Email, &passHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Admin{}, "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Admin{}, "", fmt.Errorf("%s: %w", op, err)
	}
	admin.CreatedAt = fromMillis(createdAt)
	return admin, passHash, nil
}

func (q *Queries) AdminByID(ctx context.Context, id int64) (models.Admin, error) {
	const op = "storage.AdminByID"

	var admin models.Admin
	var createdAt int64
	err := q.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, created_at
		FROM admin
		WHERE id = $1
	`, id).Scan(&admin.ID, &admin.FirstName, &admin.LastName, &admin.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}
	admin.CreatedAt = fromMillis(createdAt)
	return admin, nil
}

func (q *Queries) CreateSession(ctx context.Context, s Session) error {
	const op = "storage.CreateSession"

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO user_session (id, kind, admin_id, voter_id, election_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.Kind, nullableInt(s.AdminID), nullableInt(s.VoterID), nullableInt(s.ElectionID),
		toMillis(s.CreatedAt), toMillis(s.ExpiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SessionByID returns a session that has not expired at now
func (q *Queries) SessionByID(ctx context.Context, id string, now time.Time) (Session, error) {
	const op = "storage.SessionByID"

	var s Session
	var adminID, voterID, electionID sql.NullInt64
	var createdAt, expiresAt int64
	err := q.db.QueryRowContext(ctx, `
		SELECT id, kind, admin_id, voter_id, election_id, created_at, expires_at
		FROM user_session
		WHERE id = $1 AND expires_at > $2
	`, id, toMillis(now)).Scan(&s.ID, &s.Kind, &adminID, &voterID, &electionID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.AdminID = adminID.Int64
	s.VoterID = voterID.Int64
	s.ElectionID = electionID.Int64
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.DeleteSession"

	if _, err := q.db.ExecContext(ctx, `DELETE FROM user_session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.DeleteExpiredSessions"

	res, err := q.db.ExecContext(ctx, `DELETE FROM user_session WHERE expires_at <= $1`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
