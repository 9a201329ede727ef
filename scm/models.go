package scm

import (
	"fmt"
	"time"
)

// PullRequestState is the lifecycle state of a pull request.
type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
	// PullRequestAll is only meaningful as a listing filter.
	PullRequestAll PullRequestState = "all"
)

// IssueState is the lifecycle state of an issue.
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// Repository identifies a repository. It keys every per-repository cache.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the repository in owner/name form.
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

func (r Repository) String() string {
	return r.FullName()
}

// PullRequest is the listing view of a pull request.
type PullRequest struct {
	Number int              `json:"number"`
	State  PullRequestState `json:"state"`
	Head   string           `json:"head"`
	Base   string           `json:"base"`
	Body   string           `json:"body"`
	Author string           `json:"author"`
}

// IsOpen reports whether the pull request is open.
func (pr PullRequest) IsOpen() bool {
	return pr.State == PullRequestOpen
}

// PullRequestDetail carries the fields only available from a full pull request fetch.
type PullRequestDetail struct {
	Number int `json:"number"`
	// Mergeable is nil while the provider is still computing it.
	Mergeable *bool `json:"mergeable,omitempty"`
}

// Branch is a repository branch. Presence in a listing means the branch has not been deleted.
type Branch struct {
	Name      string     `json:"name"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Issue is an issue referenced from a pull request body.
type Issue struct {
	Number int        `json:"number"`
	State  IssueState `json:"state"`
	Title  string     `json:"title"`
	// IsPullRequest is set when the number belongs to a pull request, which shares the issue numbering.
	IsPullRequest bool `json:"is_pull_request,omitempty"`
}

// IsClosed reports whether the issue is closed.
func (i Issue) IsClosed() bool {
	return i.State == IssueClosed
}

// Comment is a comment attached to an issue or pull request.
type Comment struct {
	Body   string `json:"body"`
	Author string `json:"author"`
}

// Team is an owner team whose members count as maintainers.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Commit is a commit on the default history.
type Commit struct {
	SHA    string `json:"sha"`
	Author string `json:"author"`
}
