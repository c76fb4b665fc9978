// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestCreateAndListElections(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	names := []string{"Board 2025", "Budget vote"}
	for _, name := range names {
		w := httptest.NewRecorder()
		env.admin.CreateElection(w, jsonRequest("POST", "/elections", models.CreateElectionRequest{Name: name}, actor))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	w := httptest.NewRecorder()
	env.admin.ListElections(w, jsonRequest("GET", "/elections", nil, actor))
	testutil.AssertStatus(t, w, http.StatusOK)

	var elections []models.Election
	testutil.AssertJSON(t, w, &elections)
	if len(elections) != len(names) {
		t.Fatalf("Expected %d elections, got %d", len(names), len(elections))
	}
	for i, e := range elections {
		if e.Name != names[i] {
			t.Errorf("Election %d: expected %q, got %q", i, names[i], e.Name)
		}
		if e.Status != models.StatusDraft {
			t.Errorf("Election %d: expected draft, got %s", i, e.Status)
		}
	}
}

func TestCreateElection_Errors(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.admin.CreateElection(w, jsonRequest("POST", "/elections",
			models.CreateElectionRequest{Name: "x"}, election.Anonymous(auth.NewSessionID())))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("blank name", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.admin.CreateElection(w, jsonRequest("POST", "/elections", models.CreateElectionRequest{Name: "  "}, actor))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("form post redirects", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.admin.CreateElection(w, formRequest("/elections", url.Values{"name": {"Picnic"}}, actor))
		testutil.AssertStatus(t, w, http.StatusFound)
		if loc := w.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("Expected redirect to /dashboard, got %q", loc)
		}
	})
}

func TestGetElection(t *testing.T) {
	env := newTestEnv(t)
	_, owner := testutil.CreateTestAdmin(t, env.svc)
	_, other := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateLaunchedElection(t, env.svc, owner)
	id := idString(te.Election.ID)

	w := httptest.NewRecorder()
	env.admin.GetElection(w, jsonRequest("GET", "/elections/"+id, nil, owner, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	var detail models.ElectionDetailResponse
	testutil.AssertJSON(t, w, &detail)
	if detail.Election.ID != te.Election.ID {
		t.Errorf("Expected election %d, got %d", te.Election.ID, detail.Election.ID)
	}
	if len(detail.Questions) != 1 || len(detail.Questions[0].Options) != 2 {
		t.Errorf("Unexpected ballot: %+v", detail.Questions)
	}
	if len(detail.Voters) != 2 {
		t.Errorf("Expected 2 voters, got %d", len(detail.Voters))
	}
	if detail.CSRFToken == "" {
		t.Error("Expected CSRF token")
	}

	testCases := []struct {
		name   string
		actor  election.Actor
		id     string
		status int
	}{
		{"other admin", other, id, http.StatusForbidden},
		{"missing election", owner, "999999", http.StatusNotFound},
		{"invalid id", owner, "abc", http.StatusBadRequest},
		{"anonymous", election.Anonymous(auth.NewSessionID()), id, http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.admin.GetElection(w, jsonRequest("GET", "/elections/"+tc.id, nil, tc.actor, "id", tc.id))
			testutil.AssertStatus(t, w, tc.status)
		})
	}
}

func TestUpdateElection(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	empty := testutil.CreateTestElection(t, env.svc, actor, "Empty", nil, nil)
	eid := idString(empty.Election.ID)

	name := "Renamed"
	w := httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+eid, models.UpdateElectionRequest{Name: &name}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var renamed models.Election
	testutil.AssertJSON(t, w, &renamed)
	if renamed.Name != name {
		t.Errorf("Expected name %q, got %q", name, renamed.Name)
	}

	// No questions yet
	w = httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+eid, models.UpdateElectionRequest{Start: true}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	w = httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+eid, map[string]interface{}{}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	ready := testutil.CreateTestElection(t, env.svc, actor, "Ready",
		[]string{"Color"}, map[string][]string{"Color": {"Red", "Blue"}})
	rid := idString(ready.Election.ID)

	w = httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+rid, models.UpdateElectionRequest{Start: true}, actor, "id", rid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var launched models.Election
	testutil.AssertJSON(t, w, &launched)
	if launched.Status != models.StatusLaunched || launched.LaunchedAt == nil {
		t.Errorf("Expected launched election, got %+v", launched)
	}

	// Launched elections cannot be renamed
	w = httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+rid, models.UpdateElectionRequest{Name: &name}, actor, "id", rid))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	w = httptest.NewRecorder()
	env.admin.UpdateElection(w, jsonRequest("PUT", "/elections/"+rid, models.UpdateElectionRequest{End: true}, actor, "id", rid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var ended models.Election
	testutil.AssertJSON(t, w, &ended)
	if ended.Status != models.StatusEnded {
		t.Errorf("Expected ended election, got %s", ended.Status)
	}
}

func TestLaunchAndEndRoutes(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateTestElection(t, env.svc, actor, "Lunch",
		[]string{"Where?"}, map[string][]string{"Where?": {"Tacos", "Pho"}})
	id := idString(te.Election.ID)

	// Ending a draft is not a valid transition
	w := httptest.NewRecorder()
	env.admin.EndElection(w, jsonRequest("POST", "/elections/"+id+"/end", nil, actor, "id", id))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	w = httptest.NewRecorder()
	env.admin.LaunchElection(w, formRequest("/elections/"+id+"/launch", url.Values{}, actor, "id", id))
	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/elections/"+id {
		t.Errorf("Expected redirect to election page, got %q", loc)
	}

	w = httptest.NewRecorder()
	env.admin.LaunchElection(w, jsonRequest("POST", "/elections/"+id+"/launch", nil, actor, "id", id))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	w = httptest.NewRecorder()
	env.admin.EndElection(w, jsonRequest("POST", "/elections/"+id+"/end", nil, actor, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestDeleteElection(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	draft := testutil.CreateTestElection(t, env.svc, actor, "Draft",
		[]string{"Q"}, map[string][]string{"Q": {"A", "B"}}, "voter1")
	did := idString(draft.Election.ID)

	w := httptest.NewRecorder()
	env.admin.DeleteElection(w, jsonRequest("DELETE", "/elections/"+did, nil, actor, "id", did))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.admin.GetElection(w, jsonRequest("GET", "/elections/"+did, nil, actor, "id", did))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	launched := testutil.CreateLaunchedElection(t, env.svc, actor)
	lid := idString(launched.Election.ID)

	w = httptest.NewRecorder()
	env.admin.DeleteElection(w, jsonRequest("DELETE", "/elections/"+lid, nil, actor, "id", lid))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
}

func TestQuestionsAndOptions(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateTestElection(t, env.svc, actor, "Trivia", nil, nil)
	eid := idString(te.Election.ID)

	w := httptest.NewRecorder()
	env.admin.AddQuestion(w, jsonRequest("POST", "/elections/"+eid+"/questions",
		models.QuestionRequest{Title: "Best pet?", Description: "Pick one"}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatedResponse
	testutil.AssertJSON(t, w, &created)
	qid := idString(created.ID)

	w = httptest.NewRecorder()
	env.admin.EditQuestion(w, jsonRequest("PUT", "/elections/"+eid+"/questions/"+qid,
		models.QuestionRequest{Title: "Best pet ever?"}, actor, "id", eid, "qid", qid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var edited models.Question
	testutil.AssertJSON(t, w, &edited)
	if edited.Title != "Best pet ever?" {
		t.Errorf("Expected edited title, got %q", edited.Title)
	}

	var optionIDs []string
	for _, title := range []string{"Cat", "Dog", "Fish"} {
		w = httptest.NewRecorder()
		env.admin.AddOption(w, jsonRequest("POST", "/elections/"+eid+"/questions/"+qid+"/options",
			models.OptionRequest{Title: title}, actor, "id", eid, "qid", qid))
		testutil.AssertStatus(t, w, http.StatusCreated)
		var opt models.CreatedResponse
		testutil.AssertJSON(t, w, &opt)
		optionIDs = append(optionIDs, idString(opt.ID))
	}

	w = httptest.NewRecorder()
	env.admin.EditOption(w, jsonRequest("PUT", "/elections/"+eid+"/questions/"+qid+"/options/"+optionIDs[2],
		models.OptionRequest{Title: "Goldfish"}, actor, "id", eid, "qid", qid, "oid", optionIDs[2]))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.admin.DeleteOption(w, jsonRequest("DELETE", "/elections/"+eid+"/questions/"+qid+"/options/"+optionIDs[0],
		nil, actor, "id", eid, "qid", qid, "oid", optionIDs[0]))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.admin.ListOptions(w, jsonRequest("GET", "/elections/"+eid+"/questions/"+qid+"/options",
		nil, actor, "id", eid, "qid", qid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var options []models.Option
	testutil.AssertJSON(t, w, &options)
	if len(options) != 2 || options[0].Title != "Dog" || options[1].Title != "Goldfish" {
		t.Errorf("Unexpected options: %+v", options)
	}

	w = httptest.NewRecorder()
	env.admin.ListQuestions(w, jsonRequest("GET", "/elections/"+eid+"/questions", nil, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var questions []models.QuestionWithOptions
	testutil.AssertJSON(t, w, &questions)
	if len(questions) != 1 || len(questions[0].Options) != 2 {
		t.Errorf("Unexpected questions: %+v", questions)
	}

	// An option addressed through another election's question is not found
	other := testutil.CreateTestElection(t, env.svc, actor, "Other",
		[]string{"Other?"}, map[string][]string{"Other?": {"X", "Y"}})
	otherQID := idString(other.Questions[0].ID)
	w = httptest.NewRecorder()
	env.admin.EditOption(w, jsonRequest("PUT", "/elections/"+eid+"/questions/"+otherQID+"/options/"+optionIDs[1],
		models.OptionRequest{Title: "Nope"}, actor, "id", eid, "qid", otherQID, "oid", optionIDs[1]))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	env.admin.DeleteQuestion(w, jsonRequest("DELETE", "/elections/"+eid+"/questions/"+qid,
		nil, actor, "id", eid, "qid", qid))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.admin.ListQuestions(w, jsonRequest("GET", "/elections/"+eid+"/questions", nil, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusOK)
	questions = nil
	testutil.AssertJSON(t, w, &questions)
	if len(questions) != 0 {
		t.Errorf("Expected no questions, got %d", len(questions))
	}
}

func TestVoters(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)
	te := testutil.CreateTestElection(t, env.svc, actor, "Roster", nil, nil)
	eid := idString(te.Election.ID)

	w := httptest.NewRecorder()
	env.admin.AddVoter(w, jsonRequest("POST", "/elections/"+eid+"/voters",
		models.VoterRequest{VoterID: "alice", Password: "alice-pass"}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatedResponse
	testutil.AssertJSON(t, w, &created)

	w = httptest.NewRecorder()
	env.admin.AddVoter(w, jsonRequest("POST", "/elections/"+eid+"/voters",
		models.VoterRequest{VoterID: "alice", Password: "other-pass"}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = httptest.NewRecorder()
	env.admin.AddVoter(w, jsonRequest("POST", "/elections/"+eid+"/voters",
		models.VoterRequest{VoterID: "bob"}, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	env.admin.ListVoters(w, jsonRequest("GET", "/elections/"+eid+"/voters", nil, actor, "id", eid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var voters []models.Voter
	testutil.AssertJSON(t, w, &voters)
	if len(voters) != 1 || voters[0].VoterID != "alice" {
		t.Fatalf("Unexpected voters: %+v", voters)
	}

	vid := idString(created.ID)
	w = httptest.NewRecorder()
	env.admin.DeleteVoter(w, jsonRequest("DELETE", "/elections/"+eid+"/voters/"+vid, nil, actor, "id", eid, "vid", vid))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.admin.DeleteVoter(w, jsonRequest("DELETE", "/elections/"+eid+"/voters/"+vid, nil, actor, "id", eid, "vid", vid))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestOwnerResults(t *testing.T) {
	env := newTestEnv(t)
	_, actor := testutil.CreateTestAdmin(t, env.svc)

	draft := testutil.CreateTestElection(t, env.svc, actor, "Draft", nil, nil)
	did := idString(draft.Election.ID)
	w := httptest.NewRecorder()
	env.admin.Results(w, jsonRequest("GET", "/elections/"+did+"/results", nil, actor, "id", did))
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	te := testutil.CreateLaunchedElection(t, env.svc, actor)
	id := idString(te.Election.ID)
	w = httptest.NewRecorder()
	env.admin.Results(w, jsonRequest("GET", "/elections/"+id+"/results", nil, actor, "id", id))
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.Results
	testutil.AssertJSON(t, w, &results)
	if results.TotalVotes != 0 || len(results.Questions) != 1 {
		t.Errorf("Unexpected results: %+v", results)
	}
}
