// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

// ballotBody answers the first question with the option at index pick
func ballotBody(te testutil.TestElection, pick int) map[string]interface{} {
	q := te.Questions[0]
	return map[string]interface{}{
		"question-" + idString(q.ID): q.Options[pick].ID,
	}
}

func voterActor(te testutil.TestElection, i int) election.Actor {
	v := te.Voters[i]
	return election.VoterActor(auth.NewSessionID(), v.ID, v.ElectionID)
}

func TestBallot(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	anon := election.Anonymous(auth.NewSessionID())

	draft := testutil.CreateTestElection(t, env.svc, actor, "Draft",
		[]string{"Q"}, map[string][]string{"Q": {"A", "B"}})
	did := idString(draft.Election.ID)
	w := httptest.NewRecorder()
	env.public.Ballot(w, jsonRequest("GET", "/public/"+did, nil, anon, "id", did))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	w = httptest.NewRecorder()
	env.public.Ballot(w, jsonRequest("GET", "/public/"+id, nil, anon, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.BallotResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Election.Name != "WC 2022: Trivia" {
		t.Errorf("Unexpected election name %q", resp.Election.Name)
	}
	if len(resp.Questions) != 1 || len(resp.Questions[0].Options) != 2 {
		t.Fatalf("Unexpected ballot: %+v", resp.Questions)
	}
	if resp.Questions[0].Options[0].Title != "🇦🇷 Argentina" {
		t.Errorf("Expected options in ballot order, got %q first", resp.Questions[0].Options[0].Title)
	}
	if err := auth.ValidateCSRFToken(anon.SessionID, resp.CSRFToken, env.cfg.SessionSecret); err != nil {
		t.Errorf("Expected CSRF token for the caller's session: %v", err)
	}

	w = httptest.NewRecorder()
	env.public.Ballot(w, jsonRequest("GET", "/public/999999", nil, anon, "id", "999999"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestVoterSignIn(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	anon := election.Anonymous(auth.NewSessionID())

	w := httptest.NewRecorder()
	env.public.VoterSignIn(w, jsonRequest("POST", "/session/"+id+"/voter",
		models.VoterLoginRequest{VoterID: "voter1", Password: "nope"}, anon, "id", id))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	form := url.Values{"voterId": {"voter1"}, "password": {testutil.TestPassword}}
	w = httptest.NewRecorder()
	env.public.VoterSignIn(w, formRequest("/session/"+id+"/voter", form, anon, "id", id))
	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/public/"+id+"/vote" {
		t.Errorf("Expected redirect to the ballot, got %q", loc)
	}

	cookie := findSessionCookie(w)
	if cookie == nil {
		t.Fatal("Expected voter session cookie")
	}
	claims, err := auth.ParseSession(cookie.Value, env.cfg.SessionSecret)
	if err != nil {
		t.Fatalf("Failed to parse session cookie: %v", err)
	}
	resolved, err := env.svc.ResolveSession(context.Background(), claims.SessionID(), claims.Kind)
	if err != nil {
		t.Fatalf("Failed to resolve voter session: %v", err)
	}
	if !resolved.IsVoterOf(te.Election.ID) || resolved.VoterID != te.Voters[0].ID {
		t.Errorf("Unexpected voter actor: %+v", resolved)
	}
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	voter := voterActor(te, 0)

	w := httptest.NewRecorder()
	env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", ballotBody(te, 0), voter, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VoteID == "" || resp.Message != "Vote recorded" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	// Second vote by the same voter
	w = httptest.NewRecorder()
	env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", ballotBody(te, 1), voter, "id", id))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestCastVote_Rejections(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	voter := voterActor(te, 0)

	other := testutil.CreateTestElection(t, env.svc, actor, "Other",
		[]string{"Q"}, map[string][]string{"Q": {"A", "B"}})
	foreignOption := other.Questions[0].Options[0].ID

	testCases := []struct {
		name   string
		actor  election.Actor
		body   interface{}
		status int
	}{
		{"anonymous", election.Anonymous(auth.NewSessionID()), ballotBody(te, 0), http.StatusUnauthorized},
		{"no answers", voter, map[string]interface{}{}, http.StatusBadRequest},
		{"foreign option", voter, map[string]interface{}{
			"question-" + idString(te.Questions[0].ID): foreignOption,
		}, http.StatusBadRequest},
		{"malformed answer", voter, map[string]interface{}{
			"question-" + idString(te.Questions[0].ID): "argentina",
		}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", tc.body, tc.actor, "id", id))
			testutil.AssertStatus(t, w, tc.status)
		})
	}

	// Nothing was recorded, so the voter can still vote
	w := httptest.NewRecorder()
	env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", ballotBody(te, 0), voter, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	otherID := idString(other.Election.ID)
	env.public.CastVote(w, jsonRequest("POST", "/public/"+otherID+"/cast", ballotBody(other, 0), voter, "id", otherID))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
}

func TestCastVote_IgnoresVoterIDInBody(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)

	body := ballotBody(te, 0)
	body["voterId"] = te.Voters[1].ID

	w := httptest.NewRecorder()
	env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", body, voterActor(te, 0), "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	// voter2 has not voted yet
	w = httptest.NewRecorder()
	env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", ballotBody(te, 1), voterActor(te, 1), "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestCastVote_Form(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	q := te.Questions[0]

	form := url.Values{
		"question-" + idString(q.ID): {idString(q.Options[1].ID)},
		"_csrf":                      {"ignored-here"},
	}
	w := httptest.NewRecorder()
	env.public.CastVote(w, formRequest("/public/"+id+"/cast", form, voterActor(te, 0), "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestPublicResults(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	anon := election.Anonymous(auth.NewSessionID())

	for i, pick := range []int{0, 0} {
		w := httptest.NewRecorder()
		env.public.CastVote(w, jsonRequest("POST", "/public/"+id+"/cast", ballotBody(te, pick), voterActor(te, i), "id", id))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w := httptest.NewRecorder()
	env.public.Results(w, jsonRequest("GET", "/public/"+id+"/results", nil, anon, "id", id))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	if _, err := env.svc.EndElection(context.Background(), actor, te.Election.ID); err != nil {
		t.Fatalf("Failed to end election: %v", err)
	}

	w = httptest.NewRecorder()
	env.public.Results(w, jsonRequest("GET", "/public/"+id+"/results", nil, anon, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.Results
	testutil.AssertJSON(t, w, &results)
	if results.TotalVotes != 2 || results.Status != models.StatusEnded {
		t.Fatalf("Unexpected results: %+v", results)
	}
	opts := results.Questions[0].Options
	if opts[0].Title != "🇦🇷 Argentina" || opts[0].Votes != 2 || opts[1].Votes != 0 {
		t.Errorf("Unexpected tally: %+v", opts)
	}
}

func TestParseAnswers(t *testing.T) {
	testCases := []struct {
		name    string
		body    map[string]interface{}
		want    map[int64]int64
		wantErr bool
	}{
		{
			name: "form fields",
			body: map[string]interface{}{"question-3": "7", "question-4": "9", "_csrf": "x"},
			want: map[int64]int64{3: 7, 4: 9},
		},
		{
			name: "json numbers",
			body: map[string]interface{}{"question-3": float64(7)},
			want: map[int64]int64{3: 7},
		},
		{
			name: "answers object",
			body: map[string]interface{}{"answers": map[string]interface{}{"3": float64(7), "4": "9"}},
			want: map[int64]int64{3: 7, 4: 9},
		},
		{
			name: "unrelated fields ignored",
			body: map[string]interface{}{"voterId": "voter1"},
			want: map[int64]int64{},
		},
		{name: "bad question key", body: map[string]interface{}{"question-x": "7"}, wantErr: true},
		{name: "fractional option", body: map[string]interface{}{"question-3": 7.5}, wantErr: true},
		{name: "negative option", body: map[string]interface{}{"question-3": float64(-1)}, wantErr: true},
		{name: "answers not an object", body: map[string]interface{}{"answers": "3:7"}, wantErr: true},
		{name: "option beyond int64", body: map[string]interface{}{"question-3": math.Pow(2, 63)}, wantErr: true},
		{name: "boolean option", body: map[string]interface{}{"question-3": true}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseAnswers(tc.body)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, got)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("Question %d: expected %d, got %d", k, v, got[k])
				}
			}
		})
	}
}
