// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
)

// Actor is the resolved identity of a caller. The zero value is anonymous.
type Actor struct {
	Kind       string
	SessionID  string
	AdminID    int64
	VoterID    int64
	ElectionID int64
}

func Anonymous(sessionID string) Actor {
	return Actor{Kind: models.KindAnonymous, SessionID: sessionID}
}

func AdminActor(sessionID string, adminID int64) Actor {
	return Actor{Kind: models.KindAdmin, SessionID: sessionID, AdminID: adminID}
}

func VoterActor(sessionID string, voterID, electionID int64) Actor {
	return Actor{Kind: models.KindVoter, SessionID: sessionID, VoterID: voterID, ElectionID: electionID}
}

func (a Actor) IsAdmin() bool {
	return a.Kind == models.KindAdmin && a.AdminID != 0
}

// IsVoterOf reports whether the actor is a voter session scoped to electionID
func (a Actor) IsVoterOf(electionID int64) bool {
	return a.Kind == models.KindVoter && a.VoterID != 0 && a.ElectionID == electionID
}

// ownedElection loads an election the admin actor owns. Checks run in the
// order Unauthorized, NotFound, Forbidden.
func ownedElection(ctx context.Context, q *storage.Queries, op string, actor Actor, id int64, lock bool) (models.Election, error) {
	if !actor.IsAdmin() {
		return models.Election{}, fail(op, ErrUnauthorized, "admin session required")
	}

	var e models.Election
	var err error
	if lock {
		e, err = q.ElectionForUpdate(ctx, id)
	} else {
		e, err = q.Election(ctx, id)
	}
	if err != nil {
		return models.Election{}, fromStorage(op, err)
	}

	if e.OwnerID != actor.AdminID {
		return models.Election{}, fail(op, ErrForbidden, "election %d belongs to another admin", id)
	}
	return e, nil
}

// draftElection is ownedElection followed by the Draft check
func draftElection(ctx context.Context, q *storage.Queries, op string, actor Actor, id int64) (models.Election, error) {
	e, err := ownedElection(ctx, q, op, actor, id, true)
	if err != nil {
		return models.Election{}, err
	}
	if e.Status != models.StatusDraft {
		return models.Election{}, fail(op, ErrInvalidState, "election is %s", e.Status)
	}
	return e, nil
}

// electionQuestion returns the question when it belongs to the election
func electionQuestion(ctx context.Context, q *storage.Queries, op string, electionID, questionID int64) (models.Question, error) {
	question, err := q.Question(ctx, questionID)
	if err != nil {
		return models.Question{}, fromStorage(op, err)
	}
	if question.ElectionID != electionID {
		return models.Question{}, fail(op, ErrNotFound, "question %d is not in election %d", questionID, electionID)
	}
	return question, nil
}

// questionOption returns the option when it belongs to the question
func questionOption(ctx context.Context, q *storage.Queries, op string, questionID, optionID int64) (models.Option, error) {
	option, err := q.Option(ctx, optionID)
	if err != nil {
		return models.Option{}, fromStorage(op, err)
	}
	if option.QuestionID != questionID {
		return models.Option{}, fail(op, ErrNotFound, "option %d is not in question %d", optionID, questionID)
	}
	return option, nil
}
