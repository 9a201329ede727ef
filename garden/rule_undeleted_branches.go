package garden

import (
	"context"
	"strings"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/scm"
)

// NotifyUndeletedBranches asks for the head branch of a closed pull request to be deleted.
type NotifyUndeletedBranches struct {
	settings *config.Settings
}

func NewNotifyUndeletedBranches(s *config.Settings) *NotifyUndeletedBranches {
	return &NotifyUndeletedBranches{settings: s}
}

func (*NotifyUndeletedBranches) Name() string { return RuleNotifyUndeletedBranch }

func (*NotifyUndeletedBranches) Scope() scm.PullRequestState { return scm.PullRequestClosed }

func (r *NotifyUndeletedBranches) Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error) {
	head := pr.Head

	switch {
	case !rc.HasBranch(head):
		return nil, nil
	case strings.Contains(head, "release"):
		return nil, nil
	case r.settings.IsProtected(head):
		return nil, nil
	case rc.OtherOpenWithHead(pr, head):
		return nil, nil
	}

	comments, err := rc.Comments(ctx, pr.Number)
	if err != nil {
		return nil, err
	}

	marker := r.settings.Comments.BranchDeletion
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			return nil, nil
		}
	}

	body := tagged(r.settings, mention(ResolveNotifyLogin(pr, rc))+marker)

	return []Action{comment(pr.Number, body)}, nil
}
