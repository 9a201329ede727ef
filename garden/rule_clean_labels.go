package garden

import (
	"context"

	"github.com/ryclarke/gardener/scm"
)

// CleanClosedLabels strips review labels that no longer mean anything once a pull request is closed.
type CleanClosedLabels struct{}

var redundantLabels = []string{LabelReadyForReview, LabelNeedsMerge}

func NewCleanClosedLabels() *CleanClosedLabels {
	return &CleanClosedLabels{}
}

func (*CleanClosedLabels) Name() string { return RuleCleanClosedLabels }

func (*CleanClosedLabels) Scope() scm.PullRequestState { return scm.PullRequestClosed }

func (*CleanClosedLabels) Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error) {
	labels, err := rc.Labels(ctx, pr.Number)
	if err != nil {
		return nil, err
	}

	var actions []Action
	for _, label := range redundantLabels {
		if labels.Contains(label) {
			actions = append(actions, removeLabel(pr.Number, label))
		}
	}

	return actions, nil
}
