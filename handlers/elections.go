// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// ElectionHandler serves the admin management routes under /elections
type ElectionHandler struct {
	svc      *election.Service
	sessions *middleware.Sessions
}

func NewElectionHandler(svc *election.Service, sessions *middleware.Sessions) *ElectionHandler {
	return &ElectionHandler{svc: svc, sessions: sessions}
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.svc.ListElections(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, elections)
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.svc.CreateElection(r.Context(), middleware.ActorFrom(r.Context()), req.Name)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, "/dashboard", http.StatusCreated, models.CreatedResponse{ID: e.ID})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetElection(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ElectionDetailResponse{
		ElectionDetail: detail,
		CSRFToken:      h.sessions.CSRFToken(r),
	})
}

// UpdateElection handles PUT /elections/{id}. The body renames the
// election, or launches it with start or ends it with end.
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	actor := middleware.ActorFrom(ctx)
	var e models.Election
	var err error
	switch {
	case req.Start:
		e, err = h.svc.LaunchElection(ctx, actor, ids[0])
	case req.End:
		e, err = h.svc.EndElection(ctx, actor, ids[0])
	case req.Name != nil:
		e, err = h.svc.RenameElection(ctx, actor, ids[0], *req.Name)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "name, start or end is required")
		return
	}
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(e.ID), http.StatusOK, e)
}

// LaunchElection handles POST /elections/{id}/launch
func (h *ElectionHandler) LaunchElection(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	e, err := h.svc.LaunchElection(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(e.ID), http.StatusOK, e)
}

// EndElection handles POST /elections/{id}/end
func (h *ElectionHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	e, err := h.svc.EndElection(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(e.ID), http.StatusOK, e)
}

// DeleteElection handles DELETE /elections/{id}
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteElection(r.Context(), middleware.ActorFrom(r.Context()), ids[0]); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, "/dashboard", http.StatusOK, models.CreatedResponse{ID: ids[0]})
}

// Results handles GET /elections/{id}/results
func (h *ElectionHandler) Results(w http.ResponseWriter, r *http.Request) {
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
