package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v74/github"

	"github.com/ryclarke/gardener/scm"
)

const (
	recentCommits = 20
	maxRedirects  = 3
)

// ListBranches lists every branch of the repository.
func (g *Github) ListBranches(ctx context.Context, owner, repo string) ([]scm.Branch, error) {
	branches, err := collect(ctx, g, fmt.Sprintf("list branches of %s/%s", owner, repo), func(opt github.ListOptions) ([]*github.Branch, *github.Response, error) {
		return g.client.Repositories.ListBranches(ctx, owner, repo, &github.BranchListOptions{ListOptions: opt})
	})
	if err != nil {
		return nil, err
	}

	output := make([]scm.Branch, 0, len(branches))
	for _, branch := range branches {
		output = append(output, scm.Branch{Name: branch.GetName()})
	}

	return output, nil
}

// GetBranch fetches a branch; its update time is the committer date of its head commit.
func (g *Github) GetBranch(ctx context.Context, owner, repo, name string) (scm.Branch, error) {
	branch, _, err := call(ctx, g, false, fmt.Sprintf("get branch %s of %s/%s", name, owner, repo), func() (*github.Branch, *github.Response, error) {
		return g.client.Repositories.GetBranch(ctx, owner, repo, name, maxRedirects)
	})
	if err != nil {
		return scm.Branch{}, err
	}

	var updated *time.Time
	if committer := branch.GetCommit().GetCommit().GetCommitter(); committer != nil && committer.Date != nil {
		ts := committer.Date.Time
		updated = &ts
	}

	return scm.Branch{Name: branch.GetName(), UpdatedAt: updated}, nil
}

// ListRecentCommits lists the latest commits of the default branch, newest first.
func (g *Github) ListRecentCommits(ctx context.Context, owner, repo string) ([]scm.Commit, error) {
	opt := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: recentCommits}}

	commits, _, err := call(ctx, g, false, fmt.Sprintf("list commits of %s/%s", owner, repo), func() ([]*github.RepositoryCommit, *github.Response, error) {
		return g.client.Repositories.ListCommits(ctx, owner, repo, opt)
	})
	if err != nil {
		return nil, err
	}

	output := make([]scm.Commit, 0, len(commits))
	for _, commit := range commits {
		// the author login is empty when the commit email is not linked to an account
		output = append(output, scm.Commit{SHA: commit.GetSHA(), Author: commit.GetAuthor().GetLogin()})
	}

	return output, nil
}
