package garden

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/scm"
	"github.com/ryclarke/gardener/scm/fake"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

const (
	testOwner = "deliciousbrains"
	testRepo  = "wp-migrate-db-pro"
)

func loadSettings(t *testing.T) *config.Settings {
	t.Helper()

	_, settings := testhelper.LoadSettings(t, "../config")

	return settings
}

// setupGateway seeds a fake with the fixture teams and a repository whose default and
// protected branches were last updated an hour ago.
func setupGateway(t *testing.T) (*fake.Fake, *fake.Repo) {
	t.Helper()

	gw := fake.NewFake(testOwner)
	gw.AddTeam(scm.Team{ID: 1, Name: "Owners", Slug: "owners"}, "alice")
	gw.AddTeam(scm.Team{ID: 2, Name: "On-Trial", Slug: "on-trial"}, "bob")
	gw.AddTeam(scm.Team{ID: 3, Name: "Contractors", Slug: "contractors"}, "mallory")

	repo := gw.AddRepo(testRepo).
		AddBranch(scm.Branch{Name: "develop", UpdatedAt: hoursAgo(1)}).
		AddBranch(scm.Branch{Name: "master", UpdatedAt: hoursAgo(1)}).
		AddCommit(scm.Commit{SHA: "c0ffee", Author: "carol"})

	return gw, repo
}

func buildContext(t *testing.T, gw scm.Gateway) *RepositoryContext {
	t.Helper()

	members, err := ResolveTeamMembers(context.Background(), gw, testOwner, []string{"Owners", "On-Trial"})
	if err != nil {
		t.Fatalf("Failed to resolve team members: %v", err)
	}

	rc, err := BuildContext(context.Background(), gw, scm.Repository{Owner: testOwner, Name: testRepo}, members, scm.DefaultPageSize)
	if err != nil {
		t.Fatalf("Failed to build repository context: %v", err)
	}

	return rc
}

func hoursAgo(hours int) *time.Time {
	ts := time.Now().Add(-time.Duration(hours) * time.Hour)
	return &ts
}

func openPR(number int, head, base, author, body string) scm.PullRequest {
	return scm.PullRequest{Number: number, State: scm.PullRequestOpen, Head: head, Base: base, Author: author, Body: body}
}

func closedPR(number int, head, base, author, body string) scm.PullRequest {
	return scm.PullRequest{Number: number, State: scm.PullRequestClosed, Head: head, Base: base, Author: author, Body: body}
}

func assertActions(t *testing.T, got, want []Action) {
	t.Helper()

	if !slices.Equal(got, want) {
		t.Errorf("got actions = %v, want: %v", got, want)
	}
}

func mutationMethods(gw *fake.Fake) []string {
	var methods []string
	for _, m := range gw.Mutations() {
		methods = append(methods, m.String())
	}

	return methods
}
