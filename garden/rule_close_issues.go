package garden

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

// CloseIssuesNonDefault closes the issues resolved by pull requests merged into a branch other
// than the default one, since GitHub only auto-closes issues for the default branch.
type CloseIssuesNonDefault struct {
	settings *config.Settings
}

func NewCloseIssuesNonDefault(s *config.Settings) *CloseIssuesNonDefault {
	return &CloseIssuesNonDefault{settings: s}
}

func (*CloseIssuesNonDefault) Name() string { return RuleCloseIssuesNonDefault }

func (*CloseIssuesNonDefault) Scope() scm.PullRequestState { return scm.PullRequestClosed }

func (r *CloseIssuesNonDefault) Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error) {
	if pr.Base == r.settings.DefaultBranch {
		return nil, nil
	}

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

		issue, err := rc.Issue(ctx, id)
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

		if issue.IsClosed() || issue.IsPullRequest {
			continue
		}

		if rc.OtherOpenResolving(pr, id) {
			logging.Logger.Debug("issue still referenced by an open pull request", "repo", rc.Repo.String(), "pr", pr.Number, "issue", id)
			continue
		}

		body := tagged(r.settings, fmt.Sprintf(r.settings.Comments.IssueClosed, pr.Number, pr.Base))
		actions = append(actions, closeIssue(id), comment(id, body))
	}

	return actions, errors.Join(errs...)
}
