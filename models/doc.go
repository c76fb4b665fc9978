// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Field names match the form fields of the
ballot pages (camelCase):

  - SignupRequest: firstName, lastName, email, password
  - LoginRequest: email, password
  - VoterLoginRequest: voterId, password
  - CreateElectionRequest: name
  - UpdateElectionRequest: name, start, end
  - QuestionRequest: title, description
  - OptionRequest: title
  - VoterRequest: voterId, password

# Response Types

  - CreatedResponse: id of the created entity
  - PageResponse: csrf_token for the login and signup pages
  - DashboardResponse, ElectionDetailResponse, BallotResponse
  - CastVoteResponse: vote_id, message
  - ErrorResponse: error, message

# Domain Types

  - Admin: election owner account
  - Election: lifecycle state and ownership
  - Question, Option: ordered ballot items
  - Voter: per-election credentialed identity
  - Vote: immutable answers, one per voter per election
  - Results: per-question option counts

# Constants

Status values:

	StatusDraft    = "draft"
	StatusLaunched = "launched"
	StatusEnded    = "ended"

Session kinds:

	KindAnonymous = "anonymous"
	KindAdmin     = "admin"
	KindVoter     = "voter"
*/
package models
