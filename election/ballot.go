// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
)

// VoteMeta describes the request a vote arrived on
type VoteMeta struct {
	IP        string
	UserAgent string
}

// PublicBallot returns the questions and options of a launched election
func (s *Service) PublicBallot(ctx context.Context, electionID int64) (models.Ballot, error) {
	const op = "election.PublicBallot"

	q := s.store.Queries()
	e, err := q.Election(ctx, electionID)
	if err != nil {
		return models.Ballot{}, fromStorage(op, err)
	}
	if e.Status != models.StatusLaunched {
		return models.Ballot{}, fail(op, ErrForbidden, "election is not open for voting")
	}

	questions, err := questionsWithOptions(ctx, q, electionID)
	if err != nil {
		return models.Ballot{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Ballot{Election: e, Questions: questions}, nil
}

// CastVote records the voter's answers, one option per question. A voter
// votes at most once per election; the loser of a race gets ErrConflict.
func (s *Service) CastVote(ctx context.Context, actor Actor, electionID, voterID int64, answers map[int64]int64, meta VoteMeta) (models.Vote, error) {
	const op = "election.CastVote"

	log := s.log.With(slog.String("op", op), slog.Int64("election_id", electionID))

	vote := models.Vote{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		VoterID:    voterID,
		Answers:    answers,
		CastAt:     s.now(),
		UserAgent:  meta.UserAgent,
	}
	if meta.IP != "" {
		vote.IPHash = auth.HashIP(meta.IP, s.opts.IPSalt)
	}

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		e, err := q.ElectionForShare(ctx, electionID)
		if err != nil {
			return fromStorage(op, err)
		}
		if e.Status != models.StatusLaunched {
			return fail(op, ErrInvalidState, "election is %s", e.Status)
		}

		if !actor.IsVoterOf(electionID) || actor.VoterID != voterID {
			return fail(op, ErrUnauthorized, "voter session does not match")
		}

		exists, err := q.VoteExists(ctx, electionID, voterID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return fail(op, ErrConflict, "voter has already voted")
		}

		if err := validateAnswers(ctx, q, op, electionID, answers); err != nil {
			return err
		}

		if err := q.InsertVote(ctx, vote); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return fail(op, ErrConflict, "voter has already voted")
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			log.Info("duplicate vote rejected", slog.Int64("voter_id", voterID))
		}
		return models.Vote{}, err
	}

	log.Info("vote cast", slog.String("vote_id", vote.ID), slog.Int64("voter_id", voterID))
	return vote, nil
}

// validateAnswers requires exactly one option per question of the election,
// each option belonging to its question
func validateAnswers(ctx context.Context, q *storage.Queries, op string, electionID int64, answers map[int64]int64) error {
	questions, err := q.ListQuestions(ctx, electionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	options, err := q.ListElectionOptions(ctx, electionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(answers) != len(questions) {
		return fail(op, ErrInvalidInput, "expected %d answers, got %d", len(questions), len(answers))
	}

	optionQuestion := make(map[int64]int64, len(options))
	for _, o := range options {
		optionQuestion[o.ID] = o.QuestionID
	}
	for _, question := range questions {
		optionID, ok := answers[question.ID]
		if !ok {
			return fail(op, ErrInvalidInput, "question %d is unanswered", question.ID)
		}
		if optionQuestion[optionID] != question.ID {
			return fail(op, ErrInvalidInput, "option %d does not belong to question %d", optionID, question.ID)
		}
	}
	return nil
}

// Results tallies the votes per option. The owner may read them once the
// election is launched; anyone may read them once it has ended.
func (s *Service) Results(ctx context.Context, actor Actor, electionID int64) (models.Results, error) {
	const op = "election.Results"

	q := s.store.Queries()
	e, err := q.Election(ctx, electionID)
	if err != nil {
		return models.Results{}, fromStorage(op, err)
	}

	owner := actor.IsAdmin() && actor.AdminID == e.OwnerID
	switch {
	case owner && e.Status == models.StatusDraft:
		return models.Results{}, fail(op, ErrInvalidState, "election has not been launched")
	case !owner && e.Status != models.StatusEnded:
		return models.Results{}, fail(op, ErrForbidden, "results are published when the election ends")
	}

	questions, err := questionsWithOptions(ctx, q, electionID)
	if err != nil {
		return models.Results{}, fmt.Errorf("%s: %w", op, err)
	}
	counts, total, err := q.CountVotes(ctx, electionID)
	if err != nil {
		return models.Results{}, fmt.Errorf("%s: %w", op, err)
	}

	return tally(e, questions, counts, total), nil
}

func tally(e models.Election, questions []models.QuestionWithOptions, counts map[int64]int, total int) models.Results {
	res := models.Results{
		ElectionID: e.ID,
		Status:     e.Status,
		TotalVotes: total,
		Questions:  make([]models.QuestionResult, 0, len(questions)),
	}
	for _, question := range questions {
		qr := models.QuestionResult{
			QuestionID: question.ID,
			Title:      question.Title,
			Options:    make([]models.OptionResult, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			qr.Options = append(qr.Options, models.OptionResult{
				OptionID: o.ID,
				Title:    o.Title,
				Votes:    counts[o.ID],
			})
		}
		res.Questions = append(res.Questions, qr)
	}
	return res
}
