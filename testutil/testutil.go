// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
)

// TestPassword is the password of every admin and voter the fixtures create
const TestPassword = "correct-horse-battery"

// TestDBURL returns a fresh SQLite database file under the test's temp dir
func TestDBURL(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := TestDBURL(t)
	if err := db.Migrate(db.TypeSQLite, url); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// NewTestStore returns a store over a fresh test database
func NewTestStore(t *testing.T) *storage.Store {
	t.Helper()
	return storage.New(SetupTestDB(t), db.TypeSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Env:           cliparse.EnvLocal,
		Port:          3318,
		DatabaseURL:   "file::memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		SessionSecret: "test-session-secret-0123456789",
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
}

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestService returns a service and its store over a fresh test database
func NewTestService(t *testing.T) (*election.Service, *storage.Store) {
	t.Helper()

	cfg := GetTestConfig()
	store := NewTestStore(t)
	svc := election.New(store, DiscardLogger(), election.Options{
		PasswordCost: cfg.BcryptCost,
		IPSalt:       cfg.SessionSecret,
	})
	return svc, store
}

// CreateTestAdmin signs up an admin with a fake identity and returns an
// actor for it
func CreateTestAdmin(t *testing.T, svc *election.Service) (models.Admin, election.Actor) {
	t.Helper()

	admin, err := svc.SignUp(context.Background(), models.SignupRequest{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Password:  TestPassword,
	})
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return admin, election.AdminActor("", admin.ID)
}

// TestElection is a fixture election with its ballot and roster
type TestElection struct {
	Election  models.Election
	Questions []models.QuestionWithOptions
	Voters    []models.Voter
}

// CreateTestElection creates a draft election with one question per entry of
// ballot (title -> option titles, in order given by titles) and the voters
// named in handles. Voter passwords are TestPassword.
func CreateTestElection(t *testing.T, svc *election.Service, actor election.Actor, name string, titles []string, ballot map[string][]string, handles ...string) TestElection {
	t.Helper()
	ctx := context.Background()

	e, err := svc.CreateElection(ctx, actor, name)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	out := TestElection{Election: e}
	for _, title := range titles {
		question, err := svc.AddQuestion(ctx, actor, e.ID, title, "")
		if err != nil {
			t.Fatalf("Failed to add question %q: %v", title, err)
		}
		qw := models.QuestionWithOptions{Question: question}
		for _, label := range ballot[title] {
			option, err := svc.AddOption(ctx, actor, e.ID, question.ID, label)
			if err != nil {
				t.Fatalf("Failed to add option %q: %v", label, err)
			}
			qw.Options = append(qw.Options, option)
		}
		out.Questions = append(out.Questions, qw)
	}

	for _, handle := range handles {
		voter, err := svc.AddVoter(ctx, actor, e.ID, handle, TestPassword)
		if err != nil {
			t.Fatalf("Failed to add voter %q: %v", handle, err)
		}
		out.Voters = append(out.Voters, voter)
	}
	return out
}

// CreateLaunchedElection creates and launches a two-option, one-question
// election with voters voter1 and voter2
func CreateLaunchedElection(t *testing.T, svc *election.Service, actor election.Actor) TestElection {
	t.Helper()

	te := CreateTestElection(t, svc, actor, "WC 2022: Trivia",
		[]string{"Who will win the world cup?"},
		map[string][]string{"Who will win the world cup?": {"🇦🇷 Argentina", "🇫🇷 France"}},
		"voter1", "voter2")

	e, err := svc.LaunchElection(context.Background(), actor, te.Election.ID)
	if err != nil {
		t.Fatalf("Failed to launch test election: %v", err)
	}
	te.Election = e
	return te
}

// SessionCookie persists a session for actor and returns its cookie and
// anti-forgery token. Anonymous actors get an unpersisted session.
func SessionCookie(t *testing.T, svc *election.Service, cfg cliparse.Config, actor election.Actor) (*http.Cookie, string) {
	t.Helper()

	if actor.Kind == models.KindAnonymous || actor.Kind == "" {
		actor = election.Anonymous(auth.NewSessionID())
	} else {
		var err error
		actor, err = svc.OpenSession(context.Background(), actor, cfg.SessionTTL)
		if err != nil {
			t.Fatalf("Failed to open session: %v", err)
		}
	}

	token, err := auth.SignSession(actor.SessionID, actor.Kind, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		t.Fatalf("Failed to sign session: %v", err)
	}
	cookie := &http.Cookie{Name: auth.SessionCookieName, Value: token}
	return cookie, auth.CSRFToken(actor.SessionID, cfg.SessionSecret)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
