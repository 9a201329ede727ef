package fake

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/scm"
)

var _ scm.Gateway = new(Fake)

func init() {
	// Register the fake provider factory
	scm.Register("fake", New)
}

// Fake implements an in-memory SCM gateway for testing purposes.
// It is safe for concurrent use.
type Fake struct {
	Owner   string
	Teams   []scm.Team
	Members map[string][]string // key: team slug
	Repos   map[string]*Repo

	// Errors are configurable errors for testing, keyed by "Method", "Method:repo" or "Method:repo:number".
	Errors map[string]error

	mu            sync.Mutex
	mutations     []Mutation
	branchFetches map[string]int // key: "repo:branch"
}

// Repo holds the seeded state of a single repository.
type Repo struct {
	Pulls    []scm.PullRequest
	Details  map[int]scm.PullRequestDetail
	Branches map[string]scm.Branch
	Commits  []scm.Commit
	Labels   map[int]mapset.Set[string]
	Comments map[int][]scm.Comment
	Issues   map[int]scm.Issue
}

// Mutation records a write performed against the fake.
type Mutation struct {
	Method string
	Repo   string
	Number int
	Detail string
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s %s#%d %s", m.Method, m.Repo, m.Number, m.Detail)
}

var (
	activeMu sync.Mutex
	active   *Fake
)

// New returns the fake installed with Use, or a new, empty fake gateway for the specified owner.
func New(_ context.Context, owner string) scm.Gateway {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		return active
	}

	return NewFake(owner)
}

// Use installs f as the gateway returned by the registered "fake" provider until the test ends.
func Use(t testing.TB, f *Fake) {
	t.Helper()

	activeMu.Lock()
	active = f
	activeMu.Unlock()

	t.Cleanup(func() {
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
	})
}

// NewFake creates a new, empty fake gateway for the specified owner.
func NewFake(owner string) *Fake {
	return &Fake{
		Owner:         owner,
		Teams:         make([]scm.Team, 0),
		Members:       make(map[string][]string),
		Repos:         make(map[string]*Repo),
		Errors:        make(map[string]error),
		branchFetches: make(map[string]int),
	}
}

// AddRepo seeds an empty repository and returns it for further seeding.
func (f *Fake) AddRepo(name string) *Repo {
	f.mu.Lock()
	defer f.mu.Unlock()

	repo := &Repo{
		Pulls:    make([]scm.PullRequest, 0),
		Details:  make(map[int]scm.PullRequestDetail),
		Branches: make(map[string]scm.Branch),
		Commits:  make([]scm.Commit, 0),
		Labels:   make(map[int]mapset.Set[string]),
		Comments: make(map[int][]scm.Comment),
		Issues:   make(map[int]scm.Issue),
	}
	f.Repos[name] = repo

	return repo
}

// AddTeam seeds a team along with its members.
func (f *Fake) AddTeam(team scm.Team, members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Teams = append(f.Teams, team)
	f.Members[team.Slug] = append([]string(nil), members...)
}

// SeedErrors copies the given errors into the configured error set.
func (f *Fake) SeedErrors(errors map[string]error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	maps.Copy(f.Errors, errors)
}

// SetError configures an error for the given key.
func (f *Fake) SetError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Errors[key] = err
}

// ClearError removes a configured error.
func (f *Fake) ClearError(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.Errors, key)
}

// Mutations returns a copy of every write recorded so far.
func (f *Fake) Mutations() []Mutation {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.mutations)
}

// ResetMutations clears the recorded writes.
func (f *Fake) ResetMutations() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mutations = nil
}

// BranchFetches returns how many times GetBranch was called for the branch.
func (f *Fake) BranchFetches(repo, branch string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.branchFetches[repo+":"+branch]
}

// AddPull seeds a pull request. Its number also becomes a labelable entity.
func (r *Repo) AddPull(pr scm.PullRequest, labels ...string) *Repo {
	r.Pulls = append(r.Pulls, pr)
	r.Labels[pr.Number] = mapset.NewSet(labels...)

	return r
}

// SetMergeable seeds the mergeable flag returned by the detail fetch of a pull request.
func (r *Repo) SetMergeable(number int, mergeable bool) *Repo {
	r.Details[number] = scm.PullRequestDetail{Number: number, Mergeable: &mergeable}

	return r
}

// AddIssue seeds an issue with the given labels.
func (r *Repo) AddIssue(issue scm.Issue, labels ...string) *Repo {
	r.Issues[issue.Number] = issue
	r.Labels[issue.Number] = mapset.NewSet(labels...)

	return r
}

// AddBranch seeds a branch.
func (r *Repo) AddBranch(branch scm.Branch) *Repo {
	r.Branches[branch.Name] = branch

	return r
}

// AddComment seeds an existing comment on an issue or pull request.
func (r *Repo) AddComment(number int, comment scm.Comment) *Repo {
	r.Comments[number] = append(r.Comments[number], comment)

	return r
}

// AddCommit seeds a commit; commits are listed newest first in seeding order.
func (r *Repo) AddCommit(commit scm.Commit) *Repo {
	r.Commits = append(r.Commits, commit)

	return r
}

// LabelsOf returns the current labels of an issue or pull request.
func (f *Fake) LabelsOf(repo string, number int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.Repos[repo]
	if !ok || r.Labels[number] == nil {
		return nil
	}

	labels := r.Labels[number].ToSlice()
	slices.Sort(labels)

	return labels
}

// CommentsOf returns the current comments of an issue or pull request.
func (f *Fake) CommentsOf(repo string, number int) []scm.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.Repos[repo]
	if !ok {
		return nil
	}

	return slices.Clone(r.Comments[number])
}

// IssueOf returns the current state of an issue.
func (f *Fake) IssueOf(repo string, number int) scm.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.Repos[repo]; ok {
		return r.Issues[number]
	}

	return scm.Issue{}
}

// ListPullRequests returns one page of the seeded pull requests matching state.
func (f *Fake) ListPullRequests(_ context.Context, _, repo string, state scm.PullRequestState, page, perPage int) ([]scm.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("ListPullRequests", repo, 0)
	if err != nil {
		return nil, err
	}

	matched := make([]scm.PullRequest, 0, len(r.Pulls))
	for _, pr := range r.Pulls {
		if state == scm.PullRequestAll || pr.State == state {
			matched = append(matched, pr)
		}
	}

	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(matched) {
		return []scm.PullRequest{}, nil
	}

	end := min(start+perPage, len(matched))

	return slices.Clone(matched[start:end]), nil
}

// GetPullRequestDetail returns the seeded mergeable flag; unseeded pull requests report an unknown flag.
func (f *Fake) GetPullRequestDetail(_ context.Context, _, repo string, number int) (scm.PullRequestDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("GetPullRequestDetail", repo, number)
	if err != nil {
		return scm.PullRequestDetail{}, err
	}

	if detail, ok := r.Details[number]; ok {
		return detail, nil
	}

	if slices.ContainsFunc(r.Pulls, func(pr scm.PullRequest) bool { return pr.Number == number }) {
		return scm.PullRequestDetail{Number: number}, nil
	}

	return scm.PullRequestDetail{}, fmt.Errorf("pull request %s#%d: %w", repo, number, scm.ErrNotFound)
}

// ListBranches lists the seeded branches without update times.
func (f *Fake) ListBranches(_ context.Context, _, repo string) ([]scm.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("ListBranches", repo, 0)
	if err != nil {
		return nil, err
	}

	output := make([]scm.Branch, 0, len(r.Branches))
	for _, name := range slices.Sorted(maps.Keys(r.Branches)) {
		output = append(output, scm.Branch{Name: name})
	}

	return output, nil
}

// GetBranch returns a seeded branch and counts the fetch.
func (f *Fake) GetBranch(_ context.Context, _, repo, name string) (scm.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.branchFetches[repo+":"+name]++

	r, err := f.lookup("GetBranch", repo, 0)
	if err != nil {
		return scm.Branch{}, err
	}

	branch, ok := r.Branches[name]
	if !ok {
		return scm.Branch{}, fmt.Errorf("branch %s in %s: %w", name, repo, scm.ErrNotFound)
	}

	return branch, nil
}

// ListTeams lists the seeded teams.
func (f *Fake) ListTeams(_ context.Context, _ string) ([]scm.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errorFor("ListTeams", "", 0); err != nil {
		return nil, err
	}

	return slices.Clone(f.Teams), nil
}

// ListTeamMembers lists the seeded members of a team.
func (f *Fake) ListTeamMembers(_ context.Context, _ string, team scm.Team) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errorFor("ListTeamMembers", team.Slug, 0); err != nil {
		return nil, err
	}

	members, ok := f.Members[team.Slug]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", team.Slug, scm.ErrNotFound)
	}

	return slices.Clone(members), nil
}

// ListRecentCommits lists the seeded commits.
func (f *Fake) ListRecentCommits(_ context.Context, _, repo string) ([]scm.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("ListRecentCommits", repo, 0)
	if err != nil {
		return nil, err
	}

	return slices.Clone(r.Commits), nil
}

// ListLabels lists the labels of a seeded issue or pull request.
func (f *Fake) ListLabels(_ context.Context, _, repo string, number int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	labels, err := f.labels("ListLabels", repo, number)
	if err != nil {
		return nil, err
	}

	output := labels.ToSlice()
	slices.Sort(output)

	return output, nil
}

// AddLabels attaches labels to a seeded issue or pull request.
func (f *Fake) AddLabels(_ context.Context, _, repo string, number int, labels ...string) error {
	if err := scm.ValidateLabels(labels...); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.labels("AddLabels", repo, number)
	if err != nil {
		return err
	}

	current.Append(labels...)
	f.record("AddLabels", repo, number, fmt.Sprintf("%v", labels))

	return nil
}

// RemoveLabel detaches a label; removing an absent label is an ErrNotFound, as on GitHub.
func (f *Fake) RemoveLabel(_ context.Context, _, repo string, number int, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.labels("RemoveLabel", repo, number)
	if err != nil {
		return err
	}

	if !current.Contains(label) {
		return fmt.Errorf("label %q on %s#%d: %w", label, repo, number, scm.ErrNotFound)
	}

	current.Remove(label)
	f.record("RemoveLabel", repo, number, label)

	return nil
}

// ListComments lists the comments of a seeded issue or pull request.
func (f *Fake) ListComments(_ context.Context, _, repo string, number int) ([]scm.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.entity("ListComments", repo, number)
	if err != nil {
		return nil, err
	}

	return slices.Clone(r.Comments[number]), nil
}

// CreateComment appends a comment authored by the fake bot user.
func (f *Fake) CreateComment(_ context.Context, _, repo string, number int, body string) error {
	if err := scm.ValidateComment(body); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.entity("CreateComment", repo, number)
	if err != nil {
		return err
	}

	r.Comments[number] = append(r.Comments[number], scm.Comment{Body: body, Author: "gardener[bot]"})
	f.record("CreateComment", repo, number, body)

	return nil
}

// GetIssue returns a seeded issue.
func (f *Fake) GetIssue(_ context.Context, _, repo string, number int) (scm.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("GetIssue", repo, number)
	if err != nil {
		return scm.Issue{}, err
	}

	issue, ok := r.Issues[number]
	if !ok {
		return scm.Issue{}, fmt.Errorf("issue %s#%d: %w", repo, number, scm.ErrNotFound)
	}

	return issue, nil
}

// SetIssueState updates the state of a seeded issue.
func (f *Fake) SetIssueState(_ context.Context, _, repo string, number int, state scm.IssueState) error {
	if err := scm.ValidateIssueState(state); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.lookup("SetIssueState", repo, number)
	if err != nil {
		return err
	}

	issue, ok := r.Issues[number]
	if !ok {
		return fmt.Errorf("issue %s#%d: %w", repo, number, scm.ErrNotFound)
	}

	issue.State = state
	r.Issues[number] = issue
	f.record("SetIssueState", repo, number, string(state))

	return nil
}

// lookup resolves the repository after checking for configured errors. Callers must hold f.mu.
func (f *Fake) lookup(method, repo string, number int) (*Repo, error) {
	if err := f.errorFor(method, repo, number); err != nil {
		return nil, err
	}

	r, ok := f.Repos[repo]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s: %w", f.Owner, repo, scm.ErrNotFound)
	}

	return r, nil
}

// entity resolves a repository whose issue or pull request number exists. Callers must hold f.mu.
func (f *Fake) entity(method, repo string, number int) (*Repo, error) {
	r, err := f.lookup(method, repo, number)
	if err != nil {
		return nil, err
	}

	if _, ok := r.Labels[number]; !ok {
		return nil, fmt.Errorf("issue or pull request %s#%d: %w", repo, number, scm.ErrNotFound)
	}

	return r, nil
}

// labels resolves the live label set of an issue or pull request. Callers must hold f.mu.
func (f *Fake) labels(method, repo string, number int) (mapset.Set[string], error) {
	r, err := f.entity(method, repo, number)
	if err != nil {
		return nil, err
	}

	return r.Labels[number], nil
}

// errorFor returns the most specific configured error. Callers must hold f.mu.
func (f *Fake) errorFor(method, repo string, number int) error {
	if err := f.Errors[fmt.Sprintf("%s:%s:%d", method, repo, number)]; err != nil {
		return err
	}

	if err := f.Errors[fmt.Sprintf("%s:%s", method, repo)]; err != nil {
		return err
	}

	return f.Errors[method]
}

// record appends a mutation. Callers must hold f.mu.
func (f *Fake) record(method, repo string, number int, detail string) {
	f.mutations = append(f.mutations, Mutation{Method: method, Repo: repo, Number: number, Detail: detail})
}
