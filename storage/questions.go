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

// CreateQuestion appends a question after the election's last one
func (q *Queries) CreateQuestion(ctx context.Context, electionID int64, title, description string) (models.Question, error) {
	const op = "storage.CreateQuestion"

	question := models.Question{
		ElectionID:  electionID,
		Title:       title,
		Description: description,
	}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO question (election_id, title, description, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM question WHERE election_id = $1))
		RETURNING id, position
	`, electionID, title, description).Scan(&question.ID, &question.Position)
	if err != nil {
		return models.Question{}, fmt.Errorf("%s: %w", op, err)
	}
	return question, nil
}

func (q *Queries) Question(ctx context.Context, id int64) (models.Question, error) {
	const op = "storage.Question"

	var question models.Question
	err := q.db.QueryRowContext(ctx, `
		SELECT id, election_id, title, description, position
		FROM question
		WHERE id = $1
	`, id).Scan(&question.ID, &question.ElectionID, &question.Title, &question.Description, &question.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Question{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Question{}, fmt.Errorf("%s: %w", op, err)
	}
	return question, nil
}

// ListQuestions returns the election's questions in ballot order
func (q *Queries) ListQuestions(ctx context.Context, electionID int64) ([]models.Question, error) {
	const op = "storage.ListQuestions"

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, election_id, title, description, position
		FROM question
		WHERE election_id = $1
		ORDER BY position, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var question models.Question
		if err := rows.Scan(&question.ID, &question.ElectionID, &question.Title, &question.Description, &question.Position); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return questions, nil
}

func (q *Queries) UpdateQuestion(ctx context.Context, id int64, title, description string) error {
	const op = "storage.UpdateQuestion"

	res, err := q.db.ExecContext(ctx, `
		UPDATE question SET title = $1, description = $2 WHERE id = $3
	`, title, description, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// DeleteQuestionTree removes the question with its options and answers
func (q *Queries) DeleteQuestionTree(ctx context.Context, id int64) error {
	const op = "storage.DeleteQuestionTree"

	err := q.execAll(ctx, []string{
		`DELETE FROM vote_answer WHERE question_id = $1`,
		`DELETE FROM question_option WHERE question_id = $1`,
	}, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// CreateOption appends an option after the question's last one
func (q *Queries) CreateOption(ctx context.Context, questionID int64, title string) (models.Option, error) {
	const op = "storage.CreateOption"

	option := models.Option{QuestionID: questionID, Title: title}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO question_option (question_id, title, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM question_option WHERE question_id = $1))
		RETURNING id, position
	`, questionID, title).Scan(&option.ID, &option.Position)
	if err != nil {
		return models.Option{}, fmt.Errorf("%s: %w", op, err)
	}
	return option, nil
}

func (q *Queries) Option(ctx context.Context, id int64) (models.Option, error) {
	const op = "storage.Option"

	var option models.Option
	err := q.db.QueryRowContext(ctx, `
		SELECT id, question_id, title, position
		FROM question_option
		WHERE id = $1
	`, id).Scan(&option.ID, &option.QuestionID, &option.Title, &option.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Option{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Option{}, fmt.Errorf("%s: %w", op, err)
	}
	return option, nil
}

// ListOptions returns the question's options in ballot order
func (q *Queries) ListOptions(ctx context.Context, questionID int64) ([]models.Option, error) {
	const op = "storage.ListOptions"

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, question_id, title, position
		FROM question_option
		WHERE question_id = $1
		ORDER BY position, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectOptions(op, rows)
}

// ListElectionOptions returns the options of every question in the election,
// ordered by question then option position
func (q *Queries) ListElectionOptions(ctx context.Context, electionID int64) ([]models.Option, error) {
	const op = "storage.ListElectionOptions"

	rows, err := q.db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.title, o.position
		FROM question_option o
		JOIN question qu ON qu.id = o.question_id
		WHERE qu.election_id = $1
		ORDER BY qu.position, qu.id, o.position, o.id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectOptions(op, rows)
}

func collectOptions(op string, rows *sql.Rows) ([]models.Option, error) {
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var option models.Option
		if err := rows.Scan(&option.ID, &option.QuestionID, &option.Title, &option.Position); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		options = append(options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return options, nil
}

func (q *Queries) UpdateOption(ctx context.Context, id int64, title string) error {
	const op = "storage.UpdateOption"

	res, err := q.db.ExecContext(ctx, `UPDATE question_option SET title = $1 WHERE id = $2`, title, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

func (q *Queries) DeleteOption(ctx context.Context, id int64) error {
	const op = "storage.DeleteOption"

	if _, err := q.db.ExecContext(ctx, `DELETE FROM vote_answer WHERE option_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM question_option WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}
