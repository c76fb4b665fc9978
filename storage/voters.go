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

func (q *Queries) CreateVoter(ctx context.Context, electionID int64, handle, passHash string, now time.Time) (models.Voter, error) {
	const op = "storage.CreateVoter"

	voter := models.Voter{
		ElectionID: electionID,
		VoterID:    handle,
		CreatedAt:  fromMillis(toMillis(now)),
	}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO voter (election_id, handle, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, electionID, handle, passHash, toMillis(now)).Scan(&voter.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Voter{}, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return models.Voter{}, fmt.Errorf("%s: %w", op, err)
	}
	return voter, nil
}

func (q *Queries) Voter(ctx context.Context, id int64) (models.Voter, error) {
	const op = "storage.Voter"

	var voter models.Voter
	var createdAt int64
	err := q.db.QueryRowContext(ctx, `
		SELECT id, election_id, handle, created_at
		FROM voter
		WHERE id = $1
	`, id).Scan(&voter.ID, &voter.ElectionID, &voter.VoterID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Voter{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Voter{}, fmt.Errorf("%s: %w", op, err)
	}
	voter.CreatedAt = fromMillis(createdAt)
	return voter, nil
}

// VoterByHandle returns the voter registered under handle in the election,
// with its password hash
func (q *Queries) VoterByHandle(ctx context.Context, electionID int64, handle string) (models.Voter, string, error) {
	const op = "storage.VoterByHandle"

	var voter models.Voter
	var passHash string
	var createdAt int64
	err := q.db.QueryRowContext(ctx, `
		SELECT id, election_id, handle, password_hash, created_at
		FROM voter
		WHERE election_id = $1 AND handle = $2
	`, electionID, handle).Scan(&voter.ID, &voter.ElectionID, &voter.VoterID, &passHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Voter{}, "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Voter{}, "", fmt.Errorf("%s: %w", op, err)
	}
	voter.CreatedAt = fromMillis(createdAt)
	return voter, passHash, nil
}

// ListVoters returns the roster in registration order
func (q *Queries) ListVoters(ctx context.Context, electionID int64) ([]models.Voter, error) {
	const op = "storage.ListVoters"

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, election_id, handle, created_at
		FROM voter
		WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var voter models.Voter
		var createdAt int64
		if err := rows.Scan(&voter.ID, &voter.ElectionID, &voter.VoterID, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		voter.CreatedAt = fromMillis(createdAt)
		voters = append(voters, voter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return voters, nil
}

// DeleteVoter removes the voter together with its sessions and vote
func (q *Queries) DeleteVoter(ctx context.Context, id int64) error {
	const op = "storage.DeleteVoter"

	err := q.execAll(ctx, []string{
		`DELETE FROM user_session WHERE voter_id = $1`,
		`DELETE FROM vote_answer WHERE vote_id IN (SELECT id FROM vote WHERE voter_id = $1)`,
		`DELETE FROM vote WHERE voter_id = $1`,
	}, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM voter WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}
