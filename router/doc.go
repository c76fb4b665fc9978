// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Elect API.

# Route Registration

NewRouter returns the full handler chain: CORS, session loading and the
mux with every endpoint:

	handler := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health
	GET /

Accounts:

	GET  /signup, /login - anti-forgery token for the forms
	POST /users          - Sign up
	POST /session        - Log in
	GET  /signout        - Log out
	GET  /dashboard      - Admin overview

Election management (admin session, anti-forgery token on mutations):

	GET, POST         /elections
	GET, PUT, DELETE  /elections/{id}
	POST              /elections/{id}/launch, /elections/{id}/end
	GET               /elections/{id}/results
	GET, POST         /elections/{id}/questions
	PUT, DELETE       /elections/{id}/questions/{qid}
	GET, POST         /elections/{id}/questions/{qid}/options
	PUT, DELETE       /elections/{id}/questions/{qid}/options/{oid}
	GET, POST         /elections/{id}/voters
	DELETE            /elections/{id}/voters/{vid}

Public:

	GET  /public/{id}         - Ballot (launched only)
	POST /session/{id}/voter  - Voter login
	GET  /public/{id}/vote    - Ballot for the signed-in voter
	POST /public/{id}/cast    - Cast vote
	GET  /public/{id}/results - Results (ended only)
*/
package router
