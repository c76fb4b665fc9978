// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

const questionFieldPrefix = "question-"

// PublicHandler serves the ballot pages and vote casting
type PublicHandler struct {
	svc      *election.Service
	sessions *middleware.Sessions
}

func NewPublicHandler(svc *election.Service, sessions *middleware.Sessions) *PublicHandler {
	return &PublicHandler{svc: svc, sessions: sessions}
}

// Ballot handles GET /public/{id} and GET /public/{id}/vote
func (h *PublicHandler) Ballot(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}

	ballot, err := h.svc.PublicBallot(r.Context(), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Ballot:    ballot,
		CSRFToken: h.sessions.CSRFToken(r),
	})
}

// VoterSignIn handles POST /session/{id}/voter
func (h *PublicHandler) VoterSignIn(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	var req models.VoterLoginRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	voter, err := h.svc.VoterSignIn(r.Context(), ids[0], req.VoterID, req.Password)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	if err := h.sessions.Start(w, r, election.VoterActor("", voter.ID, voter.ElectionID)); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.Done(w, r, publicPath(ids[0])+"/vote", http.StatusOK, voter)
}

// CastVote handles POST /public/{id}/cast. The voter is always the one
// bound to the session; a voterId in the body is ignored.
func (h *PublicHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := middleware.ParseBody(r, &body); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	answers, err := parseAnswers(body)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	vote, err := h.svc.CastVote(r.Context(), actor, ids[0], actor.VoterID, answers, election.VoteMeta{
		IP:        middleware.GetClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		VoteID:  vote.ID,
		Message: "Vote recorded",
	})
}

// Results handles GET /public/{id}/results
func (h *PublicHandler) Results(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	results, err := h.svc.Results(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}

// parseAnswers reads question -> option pairs from "question-<qid>" fields
// and from an "answers" object keyed by question id. Values may be numbers
// or numeric strings.
func parseAnswers(body map[string]interface{}) (map[int64]int64, error) {
	answers := make(map[int64]int64)
	add := func(key string, value interface{}) error {
		questionID, err := strconv.ParseInt(strings.TrimPrefix(key, questionFieldPrefix), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid question key %q", key)
		}
		optionID, err := toID(value)
		if err != nil {
			return fmt.Errorf("invalid option for %q", key)
		}
		answers[questionID] = optionID
		return nil
	}

	for key, value := range body {
		if !strings.HasPrefix(key, questionFieldPrefix) {
			continue
		}
		if err := add(key, value); err != nil {
			return nil, err
		}
	}

	if nested, ok := body["answers"]; ok {
		m, ok := nested.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("answers must be an object")
		}
		for key, value := range m {
			if err := add(key, value); err != nil {
				return nil, err
			}
		}
	}
	return answers, nil
}

func toID(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n <= 0 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("not an id: %v", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("not an id: %v", v)
	}
}
