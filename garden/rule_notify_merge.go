package garden

import (
	"context"
	"fmt"
	"time"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

// NotifyMergeIssues flags pull requests marked ready for review that can no longer be merged
// cleanly, and unflags them once they can.
type NotifyMergeIssues struct {
	settings *config.Settings
	// window is how long the base branch must have been quiet before mergeability is trusted.
	window time.Duration
	now    func() time.Time
}

func NewNotifyMergeIssues(s *config.Settings) *NotifyMergeIssues {
	return &NotifyMergeIssues{settings: s, window: s.RaceWindow, now: time.Now}
}

func (*NotifyMergeIssues) Name() string { return RuleNotifyMergeIssues }

func (*NotifyMergeIssues) Scope() scm.PullRequestState { return scm.PullRequestOpen }

func (r *NotifyMergeIssues) Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error) {
	labels, err := rc.Labels(ctx, pr.Number)
	if err != nil {
		return nil, err
	}

	if !labels.Contains(LabelReadyForReview) {
		return nil, nil
	}

	updated, err := rc.BranchUpdatedAt(ctx, pr.Base)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		logging.Logger.Debug("base branch update time unknown", "repo", rc.Repo.String(), "pr", pr.Number, "base", pr.Base)
		return nil, nil
	}

	// mergeability is recomputed lazily after the base moves
	if r.now().Sub(*updated) <= r.window {
		logging.Logger.Debug("base branch updated recently", "repo", rc.Repo.String(), "pr", pr.Number, "base", pr.Base, "updated", *updated)
		return nil, nil
	}

	mergeable, known, err := rc.Mergeable(ctx, pr.Number)
	if err != nil {
		return nil, err
	}

	if !known {
		logging.Logger.Debug("mergeability not yet computed", "repo", rc.Repo.String(), "pr", pr.Number)
		return nil, nil
	}

	hasLabel := labels.Contains(LabelNeedsMerge)

	if mergeable {
		if hasLabel {
			return []Action{removeLabel(pr.Number, LabelNeedsMerge)}, nil
		}

		return nil, nil
	}

	if hasLabel {
		return nil, nil
	}

	body := tagged(r.settings, mention(ResolveNotifyLogin(pr, rc))+fmt.Sprintf(r.settings.Comments.MergeNeeded, pr.Base))

	return []Action{
		addLabel(pr.Number, LabelNeedsMerge),
		comment(pr.Number, body),
	}, nil
}
