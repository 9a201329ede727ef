package output_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryclarke/gardener/garden"
	"github.com/ryclarke/gardener/scm"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

func loadFixture(t *testing.T) context.Context {
	t.Helper()
	return testhelper.LoadFixture(t, "../config")
}

// testReport builds a report with one clean repository, one with collected failures and one
// aborted repository.
func testReport() *garden.Report {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	return &garden.Report{
		RunID:  "run-1",
		Owner:  "deliciousbrains",
		DryRun: true,
		Repositories: []*garden.RepoReport{
			{
				Repo:         scm.Repository{Owner: "deliciousbrains", Name: "wp-migrate-db-pro"},
				PullRequests: 3,
				Applied: []garden.Action{
					{Kind: garden.ActionAddLabel, Number: 4, Label: "has PR", Rule: garden.RuleLabelIssuesWithPR, PullRequest: 3},
					{Kind: garden.ActionCloseIssue, Number: 12, Rule: garden.RuleCloseIssuesNonDefault, PullRequest: 3},
				},
			},
			{
				Repo:         scm.Repository{Owner: "deliciousbrains", Name: "wp-offload-media"},
				PullRequests: 1,
				Applied:      []garden.Action{},
				Failures:     []error{errors.New("failed to add labels to #7: forbidden")},
			},
			{
				Repo: scm.Repository{Owner: "deliciousbrains", Name: "wp-offload-ses"},
				Err:  errors.New("failed to list branches: transient"),
			},
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}
