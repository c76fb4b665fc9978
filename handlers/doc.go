// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Elect API.

# Handler Types

Each handler is a struct holding the election service and the session
manager:

  - AccountHandler: admin signup, login, signout and dashboard
  - ElectionHandler: elections, questions, options and voters
  - PublicHandler: ballot view, voter login, vote casting, public results

	electionHandler := handlers.NewElectionHandler(svc, sessions)

Handlers read the caller from middleware.ActorFrom and translate service
errors with middleware.ServiceError.

# Responses

Successful mutations redirect (302) to the parent page. Clients sending
Accept: application/json get the result as JSON instead, 201 for creates.
Vote casting always answers 200 with the vote id.

# Election Lifecycle

	POST /elections                → CreateElection (draft)
	POST /elections/{id}/questions → AddQuestion (draft only)
	POST /elections/{id}/launch    → LaunchElection
	POST /elections/{id}/end       → EndElection (results become public)

# Voting Flow

	POST /session/{id}/voter → VoterSignIn (voter session for one election)
	GET  /public/{id}/vote   → Ballot
	POST /public/{id}/cast   → CastVote

Answers are sent as "question-<qid>": <oid> fields or as an "answers"
object keyed by question id.
*/
package handlers
