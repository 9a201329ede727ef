package garden

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/scm"
)

// RepositoryContext is the snapshot of one repository that every rule evaluates against.
// It is built once per repository pass and never shared across repositories.
type RepositoryContext struct {
	Repo scm.Repository

	// PullRequests holds every pull request regardless of state, in listing order.
	PullRequests []scm.PullRequest
	// Branches holds the branches that still exist, keyed by name.
	Branches map[string]scm.Branch
	// TeamMembers is the set of maintainer logins.
	TeamMembers mapset.Set[string]
	// LastCommitter is the author login of the most recent commit, if any.
	LastCommitter string

	gateway scm.Gateway

	mu      sync.Mutex
	updated map[string]*time.Time // branch name -> last update; presence means fetched
}

// BuildContext snapshots a repository: every pull request, the existing branches and the last
// committer. The context is only returned once every fetch has succeeded.
func BuildContext(ctx context.Context, gw scm.Gateway, repo scm.Repository, members mapset.Set[string], pageSize int) (*RepositoryContext, error) {
	pulls, err := scm.CollectPullRequests(ctx, gw, repo.Owner, repo.Name, scm.PullRequestAll, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", repo, err)
	}

	branchList, err := gw.ListBranches(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for %s: %w", repo, err)
	}

	branches := make(map[string]scm.Branch, len(branchList))
	for _, branch := range branchList {
		branches[branch.Name] = scm.Branch{Name: branch.Name}
	}

	commits, err := gw.ListRecentCommits(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent commits for %s: %w", repo, err)
	}

	var lastCommitter string
	// commits by unlinked authors carry no login
	if i := slices.IndexFunc(commits, func(c scm.Commit) bool { return c.Author != "" }); i >= 0 {
		lastCommitter = commits[i].Author
	}

	if members == nil {
		members = mapset.NewSet[string]()
	}

	return NewRepositoryContext(gw, repo, pulls, branches, members, lastCommitter), nil
}

// NewRepositoryContext assembles a context from already fetched parts.
func NewRepositoryContext(gw scm.Gateway, repo scm.Repository, pulls []scm.PullRequest, branches map[string]scm.Branch, members mapset.Set[string], lastCommitter string) *RepositoryContext {
	return &RepositoryContext{
		Repo:          repo,
		PullRequests:  pulls,
		Branches:      branches,
		TeamMembers:   members,
		LastCommitter: lastCommitter,
		gateway:       gw,
		updated:       make(map[string]*time.Time),
	}
}

// ResolveTeamMembers unions the member logins of the owner's teams whose names are in allowed.
func ResolveTeamMembers(ctx context.Context, gw scm.Gateway, owner string, allowed []string) (mapset.Set[string], error) {
	members := mapset.NewSet[string]()
	allowedSet := mapset.NewSet(allowed...)

	teams, err := gw.ListTeams(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for %s: %w", owner, err)
	}

	for _, team := range teams {
		if !allowedSet.Contains(team.Name) {
			continue
		}

		logins, err := gw.ListTeamMembers(ctx, owner, team)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of team %s: %w", team.Name, err)
		}

		members.Append(logins...)
	}

	return members, nil
}

// HasBranch reports whether the branch still exists.
func (rc *RepositoryContext) HasBranch(name string) bool {
	_, ok := rc.Branches[name]
	return ok
}

// BranchUpdatedAt returns the last update time of a branch. The branch is fetched at most once
// per context; the result (including an unknown time) is cached for every later call.
func (rc *RepositoryContext) BranchUpdatedAt(ctx context.Context, name string) (*time.Time, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if updated, ok := rc.updated[name]; ok {
		return updated, nil
	}

	branch, err := rc.gateway.GetBranch(ctx, rc.Repo.Owner, rc.Repo.Name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", name, err)
	}

	rc.updated[name] = branch.UpdatedAt

	if b, ok := rc.Branches[name]; ok {
		b.UpdatedAt = branch.UpdatedAt
		rc.Branches[name] = b
	}

	return branch.UpdatedAt, nil
}

// OtherOpenWithHead reports whether an open pull request other than pr uses head as its head branch.
func (rc *RepositoryContext) OtherOpenWithHead(pr scm.PullRequest, head string) bool {
	return slices.ContainsFunc(rc.PullRequests, func(other scm.PullRequest) bool {
		return other.Number != pr.Number && other.IsOpen() && other.Head == head
	})
}

// OtherOpenResolving reports whether an open pull request other than pr, targeting the same base
// branch, still references issue.
func (rc *RepositoryContext) OtherOpenResolving(pr scm.PullRequest, issue int) bool {
	return slices.ContainsFunc(rc.PullRequests, func(other scm.PullRequest) bool {
		return other.Number != pr.Number && other.IsOpen() && other.Base == pr.Base &&
			slices.Contains(ExtractIssueIDs(other.Body), issue)
	})
}

// Labels returns the current label set of an issue or pull request.
func (rc *RepositoryContext) Labels(ctx context.Context, number int) (mapset.Set[string], error) {
	labels, err := rc.gateway.ListLabels(ctx, rc.Repo.Owner, rc.Repo.Name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels of #%d: %w", number, err)
	}

	return mapset.NewSet(labels...), nil
}

// Comments returns the comments of an issue or pull request.
func (rc *RepositoryContext) Comments(ctx context.Context, number int) ([]scm.Comment, error) {
	comments, err := rc.gateway.ListComments(ctx, rc.Repo.Owner, rc.Repo.Name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of #%d: %w", number, err)
	}

	return comments, nil
}

// Mergeable fetches a fresh mergeable flag; ok is false while the provider is still computing it.
func (rc *RepositoryContext) Mergeable(ctx context.Context, number int) (mergeable, ok bool, err error) {
	detail, err := rc.gateway.GetPullRequestDetail(ctx, rc.Repo.Owner, rc.Repo.Name, number)
	if err != nil {
		return false, false, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}

	if detail.Mergeable == nil {
		return false, false, nil
	}

	return *detail.Mergeable, true, nil
}

// Issue fetches the current state of an issue.
func (rc *RepositoryContext) Issue(ctx context.Context, number int) (scm.Issue, error) {
	issue, err := rc.gateway.GetIssue(ctx, rc.Repo.Owner, rc.Repo.Name, number)
	if err != nil {
		return scm.Issue{}, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}

	return issue, nil
}
