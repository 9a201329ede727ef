package github

import (
	"context"
	"net/http"
	"testing"

	"github.com/ryclarke/gardener/scm"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

func TestListTeams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/deliciousbrains/teams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Owners", "slug": "owners"},
			{"id": 2, "name": "On-Trial", "slug": "on-trial"},
		})
	})

	g := newTestGithub(t, mux)

	teams, err := g.ListTeams(context.Background(), testOwner)
	testhelper.AssertError(t, err, false)
	testhelper.AssertLength(t, teams, 2)

	if teams[1] != (scm.Team{ID: 2, Name: "On-Trial", Slug: "on-trial"}) {
		t.Errorf("got team = %+v", teams[1])
	}
}

func TestListTeamMembers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/deliciousbrains/teams/owners/members", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{{"login": "alice"}, {"login": "bob"}})
	})

	g := newTestGithub(t, mux)

	members, err := g.ListTeamMembers(context.Background(), testOwner, scm.Team{ID: 1, Name: "Owners", Slug: "owners"})
	testhelper.AssertOutput(t, members, []string{"alice", "bob"}, err, false)

	_, err = g.ListTeamMembers(context.Background(), testOwner, scm.Team{Slug: "ghosts"})
	testhelper.AssertEqual(t, scm.IsNotFound(err), true)
}
