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

const electionColumns = `id, owner_id, name, status, created_at, launched_at, ended_at`

func scanElection(row scanner) (models.Election, error) {
	var e models.Election
	var createdAt int64
	var launchedAt, endedAt sql.NullInt64
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Status, &createdAt, &launchedAt, &endedAt); err != nil {
		return models.Election{}, err
	}
	e.CreatedAt = fromMillis(createdAt)
	e.LaunchedAt = nullableTime(launchedAt)
	e.EndedAt = nullableTime(endedAt)
	return e, nil
}

func (q *Queries) CreateElection(ctx context.Context, ownerID int64, name string, now time.Time) (models.Election, error) {
	const op = "storage.CreateElection"

	e := models.Election{
		OwnerID:   ownerID,
		Name:      name,
		Status:    models.StatusDraft,
		CreatedAt: fromMillis(toMillis(now)),
	}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO election (owner_id, name, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ownerID, name, models.StatusDraft, toMillis(now)).Scan(&e.ID)
	if err != nil {
		return models.Election{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (q *Queries) Election(ctx context.Context, id int64) (models.Election, error) {
	return q.election(ctx, "storage.Election", id, "")
}

// ElectionForUpdate reads the election and, on PostgreSQL, locks the row
// until the transaction ends.
func (q *Queries) ElectionForUpdate(ctx context.Context, id int64) (models.Election, error) {
	return q.election(ctx, "storage.ElectionForUpdate", id, q.lockClause("UPDATE"))
}

// ElectionForShare blocks lifecycle transitions while concurrent readers,
// such as vote casts, hold the row.
func (q *Queries) ElectionForShare(ctx context.Context, id int64) (models.Election, error) {
	return q.election(ctx, "storage.ElectionForShare", id, q.lockClause("SHARE"))
}

func (q *Queries) election(ctx context.Context, op string, id int64, lock string) (models.Election, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`+lock, id)
	e, err := scanElection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Election{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Election{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// ListElections returns the owner's elections in creation order
func (q *Queries) ListElections(ctx context.Context, ownerID int64) ([]models.Election, error) {
	const op = "storage.ListElections"

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+electionColumns+`
		FROM election
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		elections = append(elections, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return elections, nil
}

func (q *Queries) RenameElection(ctx context.Context, id int64, name string) error {
	const op = "storage.RenameElection"

	res, err := q.db.ExecContext(ctx, `UPDATE election SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// TransitionElection moves the election from one status to another and
// stamps the matching timestamp column. ErrNotFound means the election is
// missing or no longer in the from status.
func (q *Queries) TransitionElection(ctx context.Context, id int64, from, to string, at time.Time) error {
	const op = "storage.TransitionElection"

	var column string
	switch to {
	case models.StatusLaunched:
		column = "launched_at"
	case models.StatusEnded:
		column = "ended_at"
	default:
		return fmt.Errorf("%s: unsupported target status %q", op, to)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE election
		SET status = $1, `+column+` = $2
		WHERE id = $3 AND status = $4
	`, to, toMillis(at), id, from)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// DeleteElectionTree removes the election and every record it owns.
// Callers run it inside InTx so the removal is all-or-nothing.
func (q *Queries) DeleteElectionTree(ctx context.Context, id int64) error {
	const op = "storage.DeleteElectionTree"

	err := q.execAll(ctx, []string{
		`DELETE FROM vote_answer WHERE vote_id IN (SELECT id FROM vote WHERE election_id = $1)`,
		`DELETE FROM vote WHERE election_id = $1`,
		`DELETE FROM user_session WHERE election_id = $1`,
		`DELETE FROM question_option WHERE question_id IN (SELECT id FROM question WHERE election_id = $1)`,
		`DELETE FROM question WHERE election_id = $1`,
		`DELETE FROM voter WHERE election_id = $1`,
	}, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM election WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// ElectionCounts returns the number of questions, voters and votes
func (q *Queries) ElectionCounts(ctx context.Context, id int64) (questions, voters, votes int, err error) {
	const op = "storage.ElectionCounts"

	err = q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM question WHERE election_id = $1),
			(SELECT COUNT(*) FROM voter WHERE election_id = $1),
			(SELECT COUNT(*) FROM vote WHERE election_id = $1)
	`, id).Scan(&questions, &voters, &votes)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return questions, voters, votes, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
