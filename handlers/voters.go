// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// ListVoters handles GET /elections/{id}/voters
func (h *ElectionHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	voters, err := h.svc.ListVoters(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

// AddVoter handles POST /elections/{id}/voters
func (h *ElectionHandler) AddVoter(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	var req models.VoterRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	voter, err := h.svc.AddVoter(r.Context(), middleware.ActorFrom(r.Context()), ids[0], req.VoterID, req.Password)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusCreated, models.CreatedResponse{ID: voter.ID})
}

// DeleteVoter handles DELETE /elections/{id}/voters/{vid}
func (h *ElectionHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "vid")
	if !ok {
		return
	}
	if err := h.svc.DeleteVoter(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1]); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusOK, models.CreatedResponse{ID: ids[1]})
}
