package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v74/github"

	"github.com/ryclarke/gardener/scm"
)

// ListLabels lists the label names of an issue or pull request.
func (g *Github) ListLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	labels, err := collect(ctx, g, fmt.Sprintf("list labels of %s/%s#%d", owner, repo, number), func(opt github.ListOptions) ([]*github.Label, *github.Response, error) {
		return g.client.Issues.ListLabelsByIssue(ctx, owner, repo, number, &opt)
	})
	if err != nil {
		return nil, err
	}

	output := make([]string, 0, len(labels))
	for _, label := range labels {
		output = append(output, label.GetName())
	}

	return output, nil
}

// AddLabels attaches labels to an issue or pull request.
func (g *Github) AddLabels(ctx context.Context, owner, repo string, number int, labels ...string) error {
	if err := scm.ValidateLabels(labels...); err != nil {
		return err
	}

	_, _, err := call(ctx, g, true, fmt.Sprintf("add labels to %s/%s#%d", owner, repo, number), func() ([]*github.Label, *github.Response, error) {
		return g.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	})

	return err
}

// RemoveLabel detaches a label from an issue or pull request.
func (g *Github) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	_, _, err := call(ctx, g, true, fmt.Sprintf("remove label %q from %s/%s#%d", label, owner, repo, number), func() (struct{}, *github.Response, error) {
		resp, err := g.client.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label)
		return struct{}{}, resp, err
	})

	return err
}

// ListComments lists the comments of an issue or pull request.
func (g *Github) ListComments(ctx context.Context, owner, repo string, number int) ([]scm.Comment, error) {
	comments, err := collect(ctx, g, fmt.Sprintf("list comments of %s/%s#%d", owner, repo, number), func(opt github.ListOptions) ([]*github.IssueComment, *github.Response, error) {
		return g.client.Issues.ListComments(ctx, owner, repo, number, &github.IssueListCommentsOptions{ListOptions: opt})
	})
	if err != nil {
		return nil, err
	}

	output := make([]scm.Comment, 0, len(comments))
	for _, c := range comments {
		output = append(output, scm.Comment{Body: c.GetBody(), Author: c.GetUser().GetLogin()})
	}

	return output, nil
}

// CreateComment posts a comment on an issue or pull request.
func (g *Github) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	if err := scm.ValidateComment(body); err != nil {
		return err
	}

	_, _, err := call(ctx, g, true, fmt.Sprintf("comment on %s/%s#%d", owner, repo, number), func() (*github.IssueComment, *github.Response, error) {
		return g.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.Ptr(body)})
	})

	return err
}

// GetIssue fetches an issue. Pull requests are reported as issues flagged IsPullRequest.
func (g *Github) GetIssue(ctx context.Context, owner, repo string, number int) (scm.Issue, error) {
	issue, _, err := call(ctx, g, false, fmt.Sprintf("get issue %s/%s#%d", owner, repo, number), func() (*github.Issue, *github.Response, error) {
		return g.client.Issues.Get(ctx, owner, repo, number)
	})
	if err != nil {
		return scm.Issue{}, err
	}

	return scm.Issue{
		Number:        issue.GetNumber(),
		State:         scm.IssueState(issue.GetState()),
		Title:         issue.GetTitle(),
		IsPullRequest: issue.IsPullRequest(),
	}, nil
}

// SetIssueState opens or closes an issue.
func (g *Github) SetIssueState(ctx context.Context, owner, repo string, number int, state scm.IssueState) error {
	if err := scm.ValidateIssueState(state); err != nil {
		return err
	}

	_, _, err := call(ctx, g, true, fmt.Sprintf("set state of %s/%s#%d to %s", owner, repo, number, state), func() (*github.Issue, *github.Response, error) {
		return g.client.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{State: github.Ptr(string(state))})
	})

	return err
}
