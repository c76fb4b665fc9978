// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and manages the schema.

# Connections

Open accepts a dialect and a connection string:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "elections.db?_pragma=foreign_keys(1)")

PostgreSQL uses lib/pq; SQLite uses the pure Go modernc.org/sqlite driver.

# Migrations

Migrate applies the embedded migrations for the dialect with golang-migrate:

	if err := db.Migrate(db.TypeSQLite, url); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - already applied versions are skipped.
Migrations live in migrations/postgres and migrations/sqlite and are kept
structurally identical.

# Tables

The schema includes:

  - admin: election owners with bcrypt password hashes
  - election: ownership and lifecycle state
  - question: ordered ballot items
  - question_option: ordered choices per question
  - voter: per-election credentials, unique handle per election
  - vote: one vote per voter per election
  - vote_answer: the chosen option per question
  - user_session: authenticated admin and voter sessions

# Relationships

	admin 1──* election
	election 1──* question 1──* question_option
	election 1──* voter
	election 1──* vote 1──* vote_answer
	voter 1──1 vote (per election)

Timestamps are stored as Unix milliseconds so both dialects scan them the
same way.
*/
package db
