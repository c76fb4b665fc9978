// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-elect/db"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the connection pool. Queries run either directly on the pool
// or inside a transaction opened with InTx.
type Store struct {
	sqlDB *sql.DB
	q     *Queries
}

// Queries holds every statement of the application.
// Placeholders are written $1..$n in ascending order, which both lib/pq and
// modernc.org/sqlite bind positionally.
type Queries struct {
	db      DBTX
	dialect string
}

func New(sqlDB *sql.DB, dialect string) *Store {
	return &Store{
		sqlDB: sqlDB,
		q:     &Queries{db: sqlDB, dialect: dialect},
	}
}

// Queries returns the non-transactional query set
func (s *Store) Queries() *Queries {
	return s.q
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InTx runs fn inside one transaction. fn must only use the Queries it is
// given; the transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	const op = "storage.InTx"

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{db: tx, dialect: s.q.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// lockClause returns the row locking suffix for the dialect.
// SQLite serializes writers, so it needs none.
func (q *Queries) lockClause(mode string) string {
	if q.dialect != db.TypePostgres {
		return ""
	}
	return " FOR " + mode
}

func (q *Queries) execAll(ctx context.Context, stmts []string, args ...any) error {
	for _, stmt := range stmts {
		if _, err := q.db.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// primary result code only; the message names the constraint
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullableInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

type scanner interface {
	Scan(dest ...any) error
}
