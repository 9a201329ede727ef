package scm

import (
	"context"
	"iter"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 100

// PullRequests lazily lists every pull request of a repository in the given state. Pages are
// requested in order starting from 1, and the sequence ends at the first empty page. A listing
// error is yielded once and ends the sequence.
func PullRequests(ctx context.Context, gw Gateway, owner, repo string, state PullRequestState, perPage int) iter.Seq2[PullRequest, error] {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	return func(yield func(PullRequest, error) bool) {
		for page := 1; ; page++ {
			pulls, err := gw.ListPullRequests(ctx, owner, repo, state, page, perPage)
			if err != nil {
				yield(PullRequest{}, err)
				return
			}

			if len(pulls) == 0 {
				return
			}

			for _, pr := range pulls {
				if !yield(pr, nil) {
					return
				}
			}
		}
	}
}

// CollectPullRequests drains PullRequests into a slice, stopping at the first error.
func CollectPullRequests(ctx context.Context, gw Gateway, owner, repo string, state PullRequestState, perPage int) ([]PullRequest, error) {
	output := make([]PullRequest, 0)

	for pr, err := range PullRequests(ctx, gw, owner, repo, state, perPage) {
		if err != nil {
			return nil, err
		}

		output = append(output, pr)
	}

	return output, nil
}
