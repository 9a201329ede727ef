package garden

import (
	"context"
	"errors"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

// LabelIssuesWithPR marks every issue an open pull request resolves as having a pull request.
type LabelIssuesWithPR struct{}

func NewLabelIssuesWithPR() *LabelIssuesWithPR {
	return &LabelIssuesWithPR{}
}

func (*LabelIssuesWithPR) Name() string { return RuleLabelIssuesWithPR }

func (*LabelIssuesWithPR) Scope() scm.PullRequestState { return scm.PullRequestOpen }

func (*LabelIssuesWithPR) Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error) {
	var (
		actions []Action
		errs    []error
	)

	// an issue referenced twice in one body is only acted on once
	seen := mapset.NewThreadUnsafeSet[int]()

	for _, id := range ExtractIssueIDs(pr.Body) {
		if !seen.Add(id) {
			continue
		}

		labels, err := rc.Labels(ctx, id)
		if scm.IsNotFound(err) {
			logging.Logger.Debug("referenced issue not found", "repo", rc.Repo.String(), "pr", pr.Number, "issue", id)
			continue
		} else if err != nil {
			errs = append(errs, err)
			if isFatal(err) {
				break
			}

			continue
		}

		if !labels.Contains(LabelHasPR) {
			actions = append(actions, addLabel(id, LabelHasPR))
		}
	}

	return actions, errors.Join(errs...)
}
