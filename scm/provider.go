package scm

import (
	"context"
	"fmt"
	"sync"
)

var (
	factoriesMu       sync.RWMutex
	providerFactories = make(map[string]ProviderFactory)
)

// ProviderFactory builds a Gateway for the given owner (organization or user).
type ProviderFactory func(ctx context.Context, owner string) Gateway

// Gateway is the source-control capability surface consumed by the gardener.
// Implementations translate provider failures into ErrNotFound and ErrTransient
// so callers can decide between skipping, collecting or aborting.
type Gateway interface {
	// ListPullRequests returns one page of pull requests. An empty page marks the end of the listing.
	ListPullRequests(ctx context.Context, owner, repo string, state PullRequestState, page, perPage int) ([]PullRequest, error)
	// GetPullRequestDetail fetches the full pull request, including the computed mergeable flag.
	GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (PullRequestDetail, error)

	// ListBranches lists every branch of the repository. Update times are left unresolved.
	ListBranches(ctx context.Context, owner, repo string) ([]Branch, error)
	// GetBranch fetches a single branch with its last update time.
	GetBranch(ctx context.Context, owner, repo, name string) (Branch, error)

	// ListTeams lists all teams of the owner.
	ListTeams(ctx context.Context, owner string) ([]Team, error)
	// ListTeamMembers lists the member logins of the team.
	ListTeamMembers(ctx context.Context, owner string, team Team) ([]string, error)

	// ListRecentCommits lists the most recent commits on the default history, newest first.
	ListRecentCommits(ctx context.Context, owner, repo string) ([]Commit, error)

	// ListLabels lists the label names attached to an issue or pull request.
	ListLabels(ctx context.Context, owner, repo string, number int) ([]string, error)
	// AddLabels attaches labels to an issue or pull request.
	AddLabels(ctx context.Context, owner, repo string, number int, labels ...string) error
	// RemoveLabel detaches a single label from an issue or pull request.
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error

	// ListComments lists the comments of an issue or pull request in creation order.
	ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
	// CreateComment appends a comment to an issue or pull request.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error

	// GetIssue fetches a single issue.
	GetIssue(ctx context.Context, owner, repo string, number int) (Issue, error)
	// SetIssueState opens or closes an issue.
	SetIssueState(ctx context.Context, owner, repo string, number int, state IssueState) error
}

// Get builds a registered gateway by provider name.
// If the provider is not registered, it panics.
func Get(ctx context.Context, name, owner string) Gateway {
	factoriesMu.RLock()
	factory, exists := providerFactories[name]
	factoriesMu.RUnlock()

	if exists {
		return factory(ctx, owner)
	}

	panic(fmt.Sprintf("SCM provider %s not registered", name))
}

// Registered reports whether a provider with the given name has been registered.
func Registered(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	_, exists := providerFactories[name]
	return exists
}

// Register a new provider factory by name. The first registration for a name wins.
func Register(name string, factory ProviderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := providerFactories[name]; !exists {
		providerFactories[name] = factory
	}
}
