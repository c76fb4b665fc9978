// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

func (q *Queries) VoteExists(ctx context.Context, electionID, voterID int64) (bool, error) {
	const op = "storage.VoteExists"

	var exists bool
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE election_id = $1 AND voter_id = $2
		)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertVote records the vote and its answers. Run it inside InTx: a
// failure on any answer must discard the whole vote. A second vote for the
// same (election, voter) fails with ErrAlreadyExists.
func (q *Queries) InsertVote(ctx context.Context, v models.Vote) error {
	const op = "storage.InsertVote"

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO vote (id, election_id, voter_id, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.ElectionID, v.VoterID, toMillis(v.CastAt), v.IPHash, v.UserAgent)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	for questionID, optionID := range v.Answers {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO vote_answer (vote_id, question_id, option_id)
			VALUES ($1, $2, $3)
		`, v.ID, questionID, optionID)
		if err != nil {
			return fmt.Errorf("%s: answer for question %d: %w", op, questionID, err)
		}
	}
	return nil
}

// VoteByVoter returns the voter's vote with its answers
func (q *Queries) VoteByVoter(ctx context.Context, electionID, voterID int64) (models.Vote, error) {
	const op = "storage.VoteByVoter"

	v := models.Vote{ElectionID: electionID, VoterID: voterID, Answers: map[int64]int64{}}
	var castAt int64
	var ipHash, userAgent sql.NullString
	err := q.db.QueryRowContext(ctx, `
		SELECT id, cast_at, ip_hash, user_agent
		FROM vote
		WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID).Scan(&v.ID, &castAt, &ipHash, &userAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vote{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Vote{}, fmt.Errorf("%s: %w", op, err)
	}
	v.CastAt = fromMillis(castAt)
	v.IPHash = ipHash.String
	v.UserAgent = userAgent.String

	rows, err := q.db.QueryContext(ctx, `
		SELECT question_id, option_id FROM vote_answer WHERE vote_id = $1
	`, v.ID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, optionID int64
		if err := rows.Scan(&questionID, &optionID); err != nil {
			return models.Vote{}, fmt.Errorf("%s: %w", op, err)
		}
		v.Answers[questionID] = optionID
	}
	if err := rows.Err(); err != nil {
		return models.Vote{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// CountVotes returns how many votes chose each option of the election,
// keyed by option id, and the number of votes cast
func (q *Queries) CountVotes(ctx context.Context, electionID int64) (map[int64]int, int, error) {
	const op = "storage.CountVotes"

	var total int
	if err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE election_id = $1
	`, electionID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT a.option_id, COUNT(*)
		FROM vote_answer a
		JOIN vote v ON v.id = a.vote_id
		WHERE v.election_id = $1
		GROUP BY a.option_id
	`, electionID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var optionID int64
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		counts[optionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return counts, total, nil
}
