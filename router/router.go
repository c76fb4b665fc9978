// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/middleware"
)

func NewRouter(svc *election.Service, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()
	sessions := middleware.NewSessions(svc, cfg)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(svc, sessions)
	electionHandler := handlers.NewElectionHandler(svc, sessions)
	publicHandler := handlers.NewPublicHandler(svc, sessions)

	// Route guards. Admin identity is checked before the anti-forgery token.
	open := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireCSRF(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireAdmin(sessions.RequireCSRF(h)))
	}
	voter := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireVoter(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("GET /signup", open(accountHandler.Page))
	mux.HandleFunc("GET /login", open(accountHandler.Page))
	mux.HandleFunc("POST /users", open(accountHandler.SignUp))
	mux.HandleFunc("POST /session", open(accountHandler.SignIn))
	mux.HandleFunc("GET /signout", open(accountHandler.SignOut))
	mux.HandleFunc("GET /dashboard", admin(accountHandler.Dashboard))

	// Election management (admin operations)
	mux.HandleFunc("GET /elections", admin(electionHandler.ListElections))
	mux.HandleFunc("POST /elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}", admin(electionHandler.GetElection))
	mux.HandleFunc("PUT /elections/{id}", admin(electionHandler.UpdateElection))
	mux.HandleFunc("DELETE /elections/{id}", admin(electionHandler.DeleteElection))
	mux.HandleFunc("POST /elections/{id}/launch", admin(electionHandler.LaunchElection))
	mux.HandleFunc("POST /elections/{id}/end", admin(electionHandler.EndElection))
	mux.HandleFunc("GET /elections/{id}/results", admin(electionHandler.Results))

	mux.HandleFunc("GET /elections/{id}/questions", admin(electionHandler.ListQuestions))
	mux.HandleFunc("POST /elections/{id}/questions", admin(electionHandler.AddQuestion))
	mux.HandleFunc("PUT /elections/{id}/questions/{qid}", admin(electionHandler.EditQuestion))
	mux.HandleFunc("DELETE /elections/{id}/questions/{qid}", admin(electionHandler.DeleteQuestion))

	mux.HandleFunc("GET /elections/{id}/questions/{qid}/options", admin(electionHandler.ListOptions))
	mux.HandleFunc("POST /elections/{id}/questions/{qid}/options", admin(electionHandler.AddOption))
	mux.HandleFunc("PUT /elections/{id}/questions/{qid}/options/{oid}", admin(electionHandler.EditOption))
	mux.HandleFunc("DELETE /elections/{id}/questions/{qid}/options/{oid}", admin(electionHandler.DeleteOption))

	mux.HandleFunc("GET /elections/{id}/voters", admin(electionHandler.ListVoters))
	mux.HandleFunc("POST /elections/{id}/voters", admin(electionHandler.AddVoter))
	mux.HandleFunc("DELETE /elections/{id}/voters/{vid}", admin(electionHandler.DeleteVoter))

	// Ballot and voting (public)
	mux.HandleFunc("GET /public/{id}", open(publicHandler.Ballot))
	mux.HandleFunc("POST /session/{id}/voter", open(publicHandler.VoterSignIn))
	mux.HandleFunc("GET /public/{id}/vote", voter(publicHandler.Ballot))
	mux.HandleFunc("POST /public/{id}/cast", open(publicHandler.CastVote))
	mux.HandleFunc("GET /public/{id}/results", open(publicHandler.Results))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return middleware.CORS(cfg.AllowedOrigins)(sessions.Load(mux))
}
