package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/ryclarke/gardener/scm"
	"github.com/ryclarke/gardener/scm/fake"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

func loadFixture(t *testing.T) context.Context {
	t.Helper()
	return testhelper.LoadFixture(t, "../config")
}

// setupGateway installs a fake with both fixture repositories: one open pull request
// resolving an issue, and an empty repository.
func setupGateway(t *testing.T, ctx context.Context) *fake.Fake {
	t.Helper()

	gw := testhelper.SetupFakeGateway(t, ctx)

	gw.AddRepo("wp-migrate-db-pro").
		AddPull(scm.PullRequest{Number: 7, State: scm.PullRequestOpen, Head: "feature", Base: "develop", Author: "bob", Body: "resolves #8"}).
		AddIssue(scm.Issue{Number: 8, State: scm.IssueOpen})
	gw.AddRepo("wp-offload-media")

	return gw
}

// execute runs the root command with args, returning stdout and stderr.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := RootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(ctx)

	return stdout.String(), stderr.String(), err
}
