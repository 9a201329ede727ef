package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v74/github"

	"github.com/ryclarke/gardener/scm"
)

// ListPullRequests returns one page of pull requests in the given state.
func (g *Github) ListPullRequests(ctx context.Context, owner, repo string, state scm.PullRequestState, page, perPage int) ([]scm.PullRequest, error) {
	opt := &github.PullRequestListOptions{
		State:       string(state),
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}

	pulls, _, err := call(ctx, g, false, fmt.Sprintf("list pull requests of %s/%s", owner, repo), func() ([]*github.PullRequest, *github.Response, error) {
		return g.client.PullRequests.List(ctx, owner, repo, opt)
	})
	if err != nil {
		return nil, err
	}

	output := make([]scm.PullRequest, 0, len(pulls))
	for _, pr := range pulls {
		output = append(output, parsePR(pr))
	}

	return output, nil
}

// GetPullRequestDetail fetches a pull request for its mergeable flag, which GitHub computes
// in the background and reports as null until it is known.
func (g *Github) GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (scm.PullRequestDetail, error) {
	pr, _, err := call(ctx, g, false, fmt.Sprintf("get pull request %s/%s#%d", owner, repo, number), func() (*github.PullRequest, *github.Response, error) {
		return g.client.PullRequests.Get(ctx, owner, repo, number)
	})
	if err != nil {
		return scm.PullRequestDetail{}, err
	}

	return scm.PullRequestDetail{Number: pr.GetNumber(), Mergeable: pr.Mergeable}, nil
}

func parsePR(pr *github.PullRequest) scm.PullRequest {
	return scm.PullRequest{
		Number: pr.GetNumber(),
		State:  scm.PullRequestState(pr.GetState()),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		Body:   pr.GetBody(),
		Author: pr.GetUser().GetLogin(),
	}
}
