// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
)

func (s *Service) CreateElection(ctx context.Context, actor Actor, name string) (models.Election, error) {
	const op = "election.CreateElection"

	if !actor.IsAdmin() {
		return models.Election{}, fail(op, ErrUnauthorized, "admin session required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Election{}, fail(op, ErrInvalidInput, "name is required")
	}

	e, err := s.store.Queries().CreateElection(ctx, actor.AdminID, name, s.now())
	if err != nil {
		return models.Election{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("election created", slog.String("op", op), slog.Int64("election_id", e.ID), slog.Int64("owner_id", e.OwnerID))
	return e, nil
}

func (s *Service) RenameElection(ctx context.Context, actor Actor, electionID int64, name string) (models.Election, error) {
	const op = "election.RenameElection"

	var e models.Election
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if e, err = draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return fail(op, ErrInvalidInput, "name is required")
		}
		if err := q.RenameElection(ctx, electionID, name); err != nil {
			return fromStorage(op, err)
		}
		e.Name = name
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}
	return e, nil
}

// DeleteElection removes a draft election and everything it owns
func (s *Service) DeleteElection(ctx context.Context, actor Actor, electionID int64) error {
	const op = "election.DeleteElection"

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		if err := q.DeleteElectionTree(ctx, electionID); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("election deleted", slog.String("op", op), slog.Int64("election_id", electionID))
	return nil
}

// LaunchElection opens a draft election for voting. There must be at least
// one question and every question needs an option.
func (s *Service) LaunchElection(ctx context.Context, actor Actor, electionID int64) (models.Election, error) {
	const op = "election.LaunchElection"

	var e models.Election
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if e, err = draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}

		questions, err := q.ListQuestions(ctx, electionID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if len(questions) == 0 {
			return fail(op, ErrInvalidState, "election has no questions")
		}
		options, err := q.ListElectionOptions(ctx, electionID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		perQuestion := make(map[int64]int, len(questions))
		for _, o := range options {
			perQuestion[o.QuestionID]++
		}
		for _, question := range questions {
			if perQuestion[question.ID] == 0 {
				return fail(op, ErrInvalidState, "question %q has no options", question.Title)
			}
		}

		at := s.now()
		if err := q.TransitionElection(ctx, electionID, models.StatusDraft, models.StatusLaunched, at); err != nil {
			return fromStorage(op, err)
		}
		e.Status = models.StatusLaunched
		e.LaunchedAt = &at
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}

	s.log.Info("election launched", slog.String("op", op), slog.Int64("election_id", electionID))
	return e, nil
}

// EndElection closes voting. Ended is terminal.
func (s *Service) EndElection(ctx context.Context, actor Actor, electionID int64) (models.Election, error) {
	const op = "election.EndElection"

	var e models.Election
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if e, err = ownedElection(ctx, q, op, actor, electionID, true); err != nil {
			return err
		}
		if e.Status != models.StatusLaunched {
			return fail(op, ErrInvalidState, "election is %s", e.Status)
		}

		at := s.now()
		if err := q.TransitionElection(ctx, electionID, models.StatusLaunched, models.StatusEnded, at); err != nil {
			return fromStorage(op, err)
		}
		e.Status = models.StatusEnded
		e.EndedAt = &at
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}

	s.log.Info("election ended", slog.String("op", op), slog.Int64("election_id", electionID))
	return e, nil
}

// ListElections returns the actor's elections in creation order
func (s *Service) ListElections(ctx context.Context, actor Actor) ([]models.Election, error) {
	const op = "election.ListElections"

	if !actor.IsAdmin() {
		return nil, fail(op, ErrUnauthorized, "admin session required")
	}
	elections, err := s.store.Queries().ListElections(ctx, actor.AdminID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return elections, nil
}

// GetElection returns the owner's view of an election with its ballot and roster
func (s *Service) GetElection(ctx context.Context, actor Actor, electionID int64) (models.ElectionDetail, error) {
	const op = "election.GetElection"

	q := s.store.Queries()
	e, err := ownedElection(ctx, q, op, actor, electionID, false)
	if err != nil {
		return models.ElectionDetail{}, err
	}
	questions, err := questionsWithOptions(ctx, q, electionID)
	if err != nil {
		return models.ElectionDetail{}, fmt.Errorf("%s: %w", op, err)
	}
	voters, err := q.ListVoters(ctx, electionID)
	if err != nil {
		return models.ElectionDetail{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.ElectionDetail{Election: e, Questions: questions, Voters: voters}, nil
}

// Dashboard returns the admin's profile and a summary of each election
func (s *Service) Dashboard(ctx context.Context, actor Actor) (models.Dashboard, error) {
	const op = "election.Dashboard"

	if !actor.IsAdmin() {
		return models.Dashboard{}, fail(op, ErrUnauthorized, "admin session required")
	}

	q := s.store.Queries()
	admin, err := q.AdminByID(ctx, actor.AdminID)
	if err != nil {
		return models.Dashboard{}, fromStorage(op, err)
	}
	elections, err := q.ListElections(ctx, actor.AdminID)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	summaries := make([]models.ElectionSummary, 0, len(elections))
	for _, e := range elections {
		questions, voters, votes, err := q.ElectionCounts(ctx, e.ID)
		if err != nil {
			return models.Dashboard{}, fmt.Errorf("%s: %w", op, err)
		}
		summary := models.ElectionSummary{
			Election:      e,
			QuestionCount: questions,
			VoterCount:    voters,
			VoteCount:     votes,
			CreatedAgo:    humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
		}
		if e.LaunchedAt != nil {
			summary.LaunchedAgo = humanize.RelTime(*e.LaunchedAt, now, "ago", "from now")
		}
		summaries = append(summaries, summary)
	}
	return models.Dashboard{Admin: admin, Elections: summaries}, nil
}

func (s *Service) AddQuestion(ctx context.Context, actor Actor, electionID int64, title, description string) (models.Question, error) {
	const op = "election.AddQuestion"

	var question models.Question
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return fail(op, ErrInvalidInput, "title is required")
		}
		var err error
		question, err = q.CreateQuestion(ctx, electionID, title, strings.TrimSpace(description))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return models.Question{}, err
	}

	s.log.Info("question added", slog.String("op", op), slog.Int64("election_id", electionID), slog.Int64("question_id", question.ID))
	return question, nil
}

func (s *Service) EditQuestion(ctx context.Context, actor Actor, electionID, questionID int64, title, description string) (models.Question, error) {
	const op = "election.EditQuestion"

	var question models.Question
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		var err error
		if question, err = electionQuestion(ctx, q, op, electionID, questionID); err != nil {
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return fail(op, ErrInvalidInput, "title is required")
		}
		question.Title = title
		question.Description = strings.TrimSpace(description)
		if err := q.UpdateQuestion(ctx, questionID, question.Title, question.Description); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
	if err != nil {
		return models.Question{}, err
	}
	return question, nil
}

// DeleteQuestion removes a question and its options
func (s *Service) DeleteQuestion(ctx context.Context, actor Actor, electionID, questionID int64) error {
	const op = "election.DeleteQuestion"

	return s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		if _, err := electionQuestion(ctx, q, op, electionID, questionID); err != nil {
			return err
		}
		if err := q.DeleteQuestionTree(ctx, questionID); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
}

func (s *Service) ListQuestions(ctx context.Context, actor Actor, electionID int64) ([]models.QuestionWithOptions, error) {
	const op = "election.ListQuestions"

	q := s.store.Queries()
	if _, err := ownedElection(ctx, q, op, actor, electionID, false); err != nil {
		return nil, err
	}
	questions, err := questionsWithOptions(ctx, q, electionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return questions, nil
}

func (s *Service) AddOption(ctx context.Context, actor Actor, electionID, questionID int64, title string) (models.Option, error) {
	const op = "election.AddOption"

	var option models.Option
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		if _, err := electionQuestion(ctx, q, op, electionID, questionID); err != nil {
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return fail(op, ErrInvalidInput, "title is required")
		}
		var err error
		option, err = q.CreateOption(ctx, questionID, title)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return models.Option{}, err
	}
	return option, nil
}

func (s *Service) EditOption(ctx context.Context, actor Actor, electionID, questionID, optionID int64, title string) (models.Option, error) {
	const op = "election.EditOption"

	var option models.Option
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		if _, err := electionQuestion(ctx, q, op, electionID, questionID); err != nil {
			return err
		}
		var err error
		if option, err = questionOption(ctx, q, op, questionID, optionID); err != nil {
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return fail(op, ErrInvalidInput, "title is required")
		}
		option.Title = title
		if err := q.UpdateOption(ctx, optionID, title); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
	if err != nil {
		return models.Option{}, err
	}
	return option, nil
}

func (s *Service) DeleteOption(ctx context.Context, actor Actor, electionID, questionID, optionID int64) error {
	const op = "election.DeleteOption"

	return s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		if _, err := electionQuestion(ctx, q, op, electionID, questionID); err != nil {
			return err
		}
		if _, err := questionOption(ctx, q, op, questionID, optionID); err != nil {
			return err
		}
		if err := q.DeleteOption(ctx, optionID); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
}

func (s *Service) ListOptions(ctx context.Context, actor Actor, electionID, questionID int64) ([]models.Option, error) {
	const op = "election.ListOptions"

	q := s.store.Queries()
	if _, err := ownedElection(ctx, q, op, actor, electionID, false); err != nil {
		return nil, err
	}
	if _, err := electionQuestion(ctx, q, op, electionID, questionID); err != nil {
		return nil, err
	}
	options, err := q.ListOptions(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return options, nil
}

// AddVoter registers a voter handle and password on the election roster.
// Handles are unique per election.
func (s *Service) AddVoter(ctx context.Context, actor Actor, electionID int64, handle, password string) (models.Voter, error) {
	const op = "election.AddVoter"

	var voter models.Voter
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		handle = strings.TrimSpace(handle)
		if handle == "" {
			return fail(op, ErrInvalidInput, "voter id is required")
		}
		if password == "" {
			return fail(op, ErrInvalidInput, "password is required")
		}

		hash, err := auth.HashPassword(password, s.opts.PasswordCost)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		voter, err = q.CreateVoter(ctx, electionID, handle, hash, s.now())
		if err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
	if err != nil {
		return models.Voter{}, err
	}

	s.log.Info("voter added", slog.String("op", op), slog.Int64("election_id", electionID), slog.Int64("voter_id", voter.ID))
	return voter, nil
}

func (s *Service) DeleteVoter(ctx context.Context, actor Actor, electionID, voterID int64) error {
	const op = "election.DeleteVoter"

	return s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := draftElection(ctx, q, op, actor, electionID); err != nil {
			return err
		}
		voter, err := q.Voter(ctx, voterID)
		if err != nil {
			return fromStorage(op, err)
		}
		if voter.ElectionID != electionID {
			return fail(op, ErrNotFound, "voter %d is not in election %d", voterID, electionID)
		}
		if err := q.DeleteVoter(ctx, voterID); err != nil {
			return fromStorage(op, err)
		}
		return nil
	})
}

func (s *Service) ListVoters(ctx context.Context, actor Actor, electionID int64) ([]models.Voter, error) {
	const op = "election.ListVoters"

	q := s.store.Queries()
	if _, err := ownedElection(ctx, q, op, actor, electionID, false); err != nil {
		return nil, err
	}
	voters, err := q.ListVoters(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return voters, nil
}

// questionsWithOptions assembles the ballot of an election in display order
func questionsWithOptions(ctx context.Context, q *storage.Queries, electionID int64) ([]models.QuestionWithOptions, error) {
	questions, err := q.ListQuestions(ctx, electionID)
	if err != nil {
		return nil, err
	}
	options, err := q.ListElectionOptions(ctx, electionID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int64][]models.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	out := make([]models.QuestionWithOptions, 0, len(questions))
	for _, question := range questions {
		opts := byQuestion[question.ID]
		if opts == nil {
			opts = []models.Option{}
		}
		out = append(out, models.QuestionWithOptions{Question: question, Options: opts})
	}
	return out, nil
}
