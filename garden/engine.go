package garden

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

// RepoReport is the outcome of one repository pass.
type RepoReport struct {
	Repo         scm.Repository `json:"repo"`
	PullRequests int            `json:"pull_requests"`
	// Applied lists the actions performed, or the planned ones in dry-run mode.
	Applied []Action `json:"applied"`
	// Failures are the non-fatal errors collected while evaluating rules.
	Failures []error `json:"-"`
	// Err is set when the pass was aborted.
	Err error `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Failed joins every error of the pass.
func (r *RepoReport) Failed() error {
	return errors.Join(append([]error{r.Err}, r.Failures...)...)
}

// Engine evaluates rules against every pull request of a repository context.
type Engine struct {
	gateway scm.Gateway
	rules   []Rule
	dryRun  bool
}

// NewEngine creates an engine applying mutations through gw. In dry-run mode the decided actions
// are only reported.
func NewEngine(gw scm.Gateway, rules []Rule, dryRun bool) *Engine {
	return &Engine{gateway: gw, rules: rules, dryRun: dryRun}
}

// Rules returns the rules the engine evaluates, in order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Process evaluates each rule in scope against each pull request of the context, applying the
// decided actions right after each evaluation so the next one observes them. Transient provider
// errors and context cancellation abort the pass; other errors are collected.
func (e *Engine) Process(ctx context.Context, rc *RepositoryContext) *RepoReport {
	report := &RepoReport{
		Repo:         rc.Repo,
		PullRequests: len(rc.PullRequests),
		Applied:      make([]Action, 0),
		StartedAt:    time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	for _, pr := range rc.PullRequests {
		for _, rule := range e.rules {
			if rule.Scope() != pr.State {
				continue
			}

			if err := ctx.Err(); err != nil {
				report.Err = err
				return report
			}

			actions, evalErr := rule.Evaluate(ctx, pr, rc)
			applyErr := e.apply(ctx, rc.Repo, rule, pr, actions, report)

			for _, err := range []error{evalErr, applyErr} {
				if err == nil {
					continue
				}

				wrapped := fmt.Errorf("%s on %s#%d: %w", rule.Name(), rc.Repo, pr.Number, err)
				if isFatal(err) {
					logging.Logger.Error("aborting repository", "repo", rc.Repo.String(), "pr", pr.Number, "rule", rule.Name(), "error", err)
					report.Err = wrapped

					return report
				}

				logging.Logger.Warn("rule failed", "repo", rc.Repo.String(), "pr", pr.Number, "rule", rule.Name(), "error", err)
				report.Failures = append(report.Failures, wrapped)
			}
		}
	}

	return report
}

// apply performs actions in order. A failed action skips the remaining actions targeting the
// same number, so a comment is never posted without the label that marks it as done.
func (e *Engine) apply(ctx context.Context, repo scm.Repository, rule Rule, pr scm.PullRequest, actions []Action, report *RepoReport) error {
	var errs []error

	failed := mapset.NewThreadUnsafeSet[int]()

	for _, action := range actions {
		action.Rule = rule.Name()
		action.PullRequest = pr.Number

		if failed.Contains(action.Number) {
			logging.Logger.Debug("skipping action", "repo", repo.String(), "pr", pr.Number, "rule", rule.Name(), "action", action.String())
			continue
		}

		if e.dryRun {
			logging.Logger.Info("would apply", "repo", repo.String(), "pr", pr.Number, "rule", rule.Name(), "action", action.String())
			report.Applied = append(report.Applied, action)

			continue
		}

		if err := action.Apply(ctx, e.gateway, repo); err != nil {
			failed.Add(action.Number)
			errs = append(errs, err)

			if isFatal(err) {
				break
			}

			continue
		}

		logging.Logger.Info("applied", "repo", repo.String(), "pr", pr.Number, "rule", rule.Name(), "action", action.String())
		report.Applied = append(report.Applied, action)
	}

	return errors.Join(errs...)
}
