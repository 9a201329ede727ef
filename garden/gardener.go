package garden

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
)

// Report is the outcome of one gardening run across repositories.
type Report struct {
	RunID  string `json:"run_id"`
	Owner  string `json:"owner"`
	DryRun bool   `json:"dry_run"`

	// Repositories holds one report per repository, in the requested order.
	Repositories []*RepoReport `json:"repositories"`
	// Err is set when the run could not start, for example when team membership was unavailable.
	Err error `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Failed joins the run error with every repository error.
func (r *Report) Failed() error {
	errs := []error{r.Err}
	for _, repo := range r.Repositories {
		if repo != nil {
			errs = append(errs, repo.Failed())
		}
	}

	return errors.Join(errs...)
}

// Applied counts the actions applied (or planned) across repositories.
func (r *Report) Applied() int {
	var count int
	for _, repo := range r.Repositories {
		if repo != nil {
			count += len(repo.Applied)
		}
	}

	return count
}

// Gardener runs the engine over a set of repositories.
type Gardener struct {
	gateway  scm.Gateway
	settings *config.Settings
	engine   *Engine
}

// New creates a gardener evaluating rules with the given settings.
func New(gw scm.Gateway, settings *config.Settings, rules []Rule) *Gardener {
	return &Gardener{
		gateway:  gw,
		settings: settings,
		engine:   NewEngine(gw, rules, settings.DryRun),
	}
}

// Run resolves team membership once, then processes repos in parallel, bounded by the
// configured concurrency. No repos runs every configured repository.
func (g *Gardener) Run(ctx context.Context, repos ...string) *Report {
	if len(repos) == 0 {
		repos = g.settings.Repositories
	}

	report := &Report{
		RunID:        uuid.NewString(),
		Owner:        g.settings.Owner,
		DryRun:       g.settings.DryRun,
		Repositories: make([]*RepoReport, len(repos)),
		StartedAt:    time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	logger := logging.Logger.With("run", report.RunID)
	logger.Info("starting run", "owner", g.settings.Owner, "repos", len(repos), "dry_run", g.settings.DryRun)

	members, err := ResolveTeamMembers(ctx, g.gateway, g.settings.Owner, g.settings.Teams)
	if err != nil {
		logger.Error("failed to resolve team members", "error", err)
		report.Err = err

		return report
	}

	var eg errgroup.Group
	eg.SetLimit(max(1, g.settings.MaxConcurrency))

	for i, name := range repos {
		eg.Go(func() error {
			report.Repositories[i] = g.processRepository(ctx, logger, scm.Repository{Owner: g.settings.Owner, Name: name}, members)
			return nil
		})
	}

	_ = eg.Wait()

	logger.Info("finished run", "applied", report.Applied(), "failed", report.Failed() != nil)

	return report
}

func (g *Gardener) processRepository(ctx context.Context, logger *slog.Logger, repo scm.Repository, members mapset.Set[string]) *RepoReport {
	start := time.Now()

	rc, err := BuildContext(ctx, g.gateway, repo, members, g.settings.PageSize)
	if err != nil {
		logger.Error("failed to build repository context", "repo", repo.String(), "error", err)

		return &RepoReport{Repo: repo, Applied: make([]Action, 0), Err: err, StartedAt: start, FinishedAt: time.Now()}
	}

	logger.Debug("processing repository", "repo", repo.String(), "pulls", len(rc.PullRequests), "branches", len(rc.Branches))

	return g.engine.Process(ctx, rc)
}
