// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/storage"
	"github.com/danielhkuo/quickly-elect/testutil"
)

type testEnv struct {
	svc      *election.Service
	store    *storage.Store
	cfg      cliparse.Config
	sessions *middleware.Sessions
	accounts *AccountHandler
	admin    *ElectionHandler
	public   *PublicHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	svc, store := testutil.NewTestService(t)
	cfg := testutil.GetTestConfig()
	sessions := middleware.NewSessions(svc, cfg)
	return &testEnv{
		svc:      svc,
		store:    store,
		cfg:      cfg,
		sessions: sessions,
		accounts: NewAccountHandler(svc, sessions),
		admin:    NewElectionHandler(svc, sessions),
		public:   NewPublicHandler(svc, sessions),
	}
}

// jsonRequest builds a JSON request made by actor. pathValues are
// name/value pairs for the route's wildcards.
func jsonRequest(method, path string, body interface{}, actor election.Actor, pathValues ...string) *http.Request {
	req := testutil.MakeRequest(method, path, body, map[string]string{"Accept": "application/json"})
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

// formRequest builds a form post made by actor, as a browser would send it
func formRequest(path string, form url.Values, actor election.Actor, pathValues ...string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func findSessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignUp(t *testing.T) {
	env := newTestEnv(t)
	anon := election.Anonymous(auth.NewSessionID())

	body := models.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  testutil.TestPassword,
	}

	w := httptest.NewRecorder()
	env.accounts.SignUp(w, jsonRequest("POST", "/users", body, anon))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatedResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ID == 0 {
		t.Error("Expected admin ID in response")
	}

	cookie := findSessionCookie(w)
	if cookie == nil {
		t.Fatal("Expected session cookie after sign up")
	}
	claims, err := auth.ParseSession(cookie.Value, env.cfg.SessionSecret)
	if err != nil {
		t.Fatalf("Failed to parse session cookie: %v", err)
	}
	if claims.Kind != models.KindAdmin {
		t.Errorf("Expected admin session, got %s", claims.Kind)
	}

	// Same email again
	w = httptest.NewRecorder()
	env.accounts.SignUp(w, jsonRequest("POST", "/users", body, anon))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSignUp_Validation(t *testing.T) {
	env := newTestEnv(t)
	anon := election.Anonymous(auth.NewSessionID())

	testCases := []struct {
		name string
		body models.SignupRequest
	}{
		{"missing first name", models.SignupRequest{Email: "a@example.com", Password: testutil.TestPassword}},
		{"invalid email", models.SignupRequest{FirstName: "A", Email: "not-an-email", Password: testutil.TestPassword}},
		{"short password", models.SignupRequest{FirstName: "A", Email: "a@example.com", Password: "short"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.accounts.SignUp(w, jsonRequest("POST", "/users", tc.body, anon))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/users", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.accounts.SignUp(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestSignUp_FormRedirectsToDashboard(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"firstName": {"Grace"},
		"lastName":  {"Hopper"},
		"email":     {"grace@example.com"},
		"password":  {testutil.TestPassword},
	}
	w := httptest.NewRecorder()
	env.accounts.SignUp(w, formRequest("/users", form, election.Anonymous(auth.NewSessionID())))

	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Expected redirect to /dashboard, got %q", loc)
	}
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := testutil.CreateTestAdmin(t, env.svc)
	anon := election.Anonymous(auth.NewSessionID())

	w := httptest.NewRecorder()
	env.accounts.SignIn(w, jsonRequest("POST", "/session", models.LoginRequest{
		Email:    admin.Email,
		Password: "wrong-password",
	}, anon))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	if findSessionCookie(w) != nil {
		t.Error("Expected no session cookie on failed sign in")
	}

	w = httptest.NewRecorder()
	env.accounts.SignIn(w, jsonRequest("POST", "/session", models.LoginRequest{
		Email:    admin.Email,
		Password: testutil.TestPassword,
	}, anon))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.Admin
	testutil.AssertJSON(t, w, &resp)
	if resp.ID != admin.ID {
		t.Errorf("Expected admin %d, got %d", admin.ID, resp.ID)
	}
	if findSessionCookie(w) == nil {
		t.Error("Expected session cookie after sign in")
	}
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	ctx := context.Background()
	actor, err := env.svc.OpenSession(ctx, actor, env.cfg.SessionTTL)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	w := httptest.NewRecorder()
	env.accounts.SignOut(w, jsonRequest("GET", "/signout", nil, actor))
	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %q", loc)
	}

	cookie := findSessionCookie(w)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("Expected session cookie to be cleared")
	}

	_, err = env.svc.ResolveSession(ctx, actor.SessionID, models.KindAdmin)
	if !errors.Is(err, election.ErrUnauthorized) {
		t.Errorf("Expected session to be gone, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	admin, actor := testutil.CreateTestAdmin(t, env.svc)
	actor.SessionID = auth.NewSessionID()
	testutil.CreateLaunchedElection(t, env.svc, actor)

	w := httptest.NewRecorder()
	env.accounts.Dashboard(w, jsonRequest("GET", "/dashboard", nil, actor))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.DashboardResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Admin.ID != admin.ID {
		t.Errorf("Expected admin %d, got %d", admin.ID, resp.Admin.ID)
	}
	if len(resp.Elections) != 1 {
		t.Fatalf("Expected 1 election, got %d", len(resp.Elections))
	}
	if resp.Elections[0].VoterCount != 2 || resp.Elections[0].QuestionCount != 1 {
		t.Errorf("Unexpected counts: %+v", resp.Elections[0])
	}
	if resp.CSRFToken != auth.CSRFToken(actor.SessionID, env.cfg.SessionSecret) {
		t.Error("Expected CSRF token bound to the session")
	}
}

func TestPage_ReturnsCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	anon := election.Anonymous(auth.NewSessionID())

	w := httptest.NewRecorder()
	env.accounts.Page(w, jsonRequest("GET", "/login", nil, anon))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PageResponse
	testutil.AssertJSON(t, w, &resp)
	if err := auth.ValidateCSRFToken(anon.SessionID, resp.CSRFToken, env.cfg.SessionSecret); err != nil {
		t.Errorf("Expected valid CSRF token: %v", err)
	}
}
