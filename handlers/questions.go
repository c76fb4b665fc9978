// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// ListQuestions handles GET /elections/{id}/questions
func (h *ElectionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	questions, err := h.svc.ListQuestions(r.Context(), middleware.ActorFrom(r.Context()), ids[0])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, questions)
}

// AddQuestion handles POST /elections/{id}/questions
func (h *ElectionHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	var req models.QuestionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.svc.AddQuestion(r.Context(), middleware.ActorFrom(r.Context()), ids[0], req.Title, req.Description)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusCreated, models.CreatedResponse{ID: question.ID})
}

// EditQuestion handles PUT /elections/{id}/questions/{qid}
func (h *ElectionHandler) EditQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid")
	if !ok {
		return
	}
	var req models.QuestionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.svc.EditQuestion(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1], req.Title, req.Description)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusOK, question)
}

// DeleteQuestion handles DELETE /elections/{id}/questions/{qid}
func (h *ElectionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid")
	if !ok {
		return
	}
	if err := h.svc.DeleteQuestion(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1]); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusOK, models.CreatedResponse{ID: ids[1]})
}

// ListOptions handles GET /elections/{id}/questions/{qid}/options
func (h *ElectionHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid")
	if !ok {
		return
	}
	options, err := h.svc.ListOptions(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1])
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, options)
}

// AddOption handles POST /elections/{id}/questions/{qid}/options
func (h *ElectionHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid")
	if !ok {
		return
	}
	var req models.OptionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	option, err := h.svc.AddOption(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1], req.Title)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusCreated, models.CreatedResponse{ID: option.ID})
}

// EditOption handles PUT /elections/{id}/questions/{qid}/options/{oid}
func (h *ElectionHandler) EditOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid", "oid")
	if !ok {
		return
	}
	var req models.OptionRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	option, err := h.svc.EditOption(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1], ids[2], req.Title)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusOK, option)
}

// DeleteOption handles DELETE /elections/{id}/questions/{qid}/options/{oid}
func (h *ElectionHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id", "qid", "oid")
	if !ok {
		return
	}
	if err := h.svc.DeleteOption(r.Context(), middleware.ActorFrom(r.Context()), ids[0], ids[1], ids[2]); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.Done(w, r, electionPath(ids[0]), http.StatusOK, models.CreatedResponse{ID: ids[2]})
}
