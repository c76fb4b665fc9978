// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Elect API server.

Quickly Elect runs multi-question elections: an admin builds a ballot and
a voter roster, launches the election, each voter casts exactly one vote,
and the admin ends the election to publish the results.

# Starting the Server

The server reads the environment (and an optional .env file) and accepts
CLI flags that override it:

	SESSION_SECRET=... DATABASE_URL=file:elect.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): at least 16 bytes; signs session
    cookies and anti-forgery tokens

Optional settings:

  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PORT (-p): Server port (default: 3318)
  - APP_ENV (--env): local (debug text logs) or prod (JSON logs)
  - SESSION_TTL, BCRYPT_COST, COOKIE_SECURE, ALLOWED_ORIGINS

# Architecture

  - handlers: HTTP request handlers (accounts, elections, public ballot)
  - router: Route definitions using Go 1.22+ routing
  - middleware: sessions, anti-forgery checks, CORS, logging, JSON helpers
  - election: lifecycle, access checks and vote casting
  - storage: SQL queries and transactions
  - db: connections and embedded migrations
  - models: Request/response and domain types
  - auth: password hashing, session tokens, anti-forgery tokens
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
