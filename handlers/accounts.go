// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

type AccountHandler struct {
	svc      *election.Service
	sessions *middleware.Sessions
}

func NewAccountHandler(svc *election.Service, sessions *middleware.Sessions) *AccountHandler {
	return &AccountHandler{svc: svc, sessions: sessions}
}

// Page handles GET /signup and GET /login
func (h *AccountHandler) Page(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.PageResponse{
		CSRFToken: h.sessions.CSRFToken(r),
	})
}

// SignUp handles POST /users
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.svc.SignUp(r.Context(), req)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	if err := h.sessions.Start(w, r, election.AdminActor("", admin.ID)); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.Done(w, r, "/dashboard", http.StatusCreated, models.CreatedResponse{ID: admin.ID})
}

// SignIn handles POST /session
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	if err := h.sessions.Start(w, r, election.AdminActor("", admin.ID)); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	slog.Info("admin signed in", "admin_id", admin.ID)
	middleware.Done(w, r, "/dashboard", http.StatusOK, admin)
}

// SignOut handles GET /signout
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Dashboard handles GET /dashboard
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Dashboard(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		Dashboard: dash,
		CSRFToken: h.sessions.CSRFToken(r),
	})
}
