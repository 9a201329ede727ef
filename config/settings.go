package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Settings is the configuration consumed by the gardening engine. It is resolved once
// from Viper so the engine never reads the environment or files itself.
type Settings struct {
	Owner        string
	Repositories []string
	Teams        []string

	DefaultBranch     string
	ProtectedBranches []string

	// Rules is the explicit subset of rule names to run; empty runs every rule.
	Rules      []string
	RaceWindow time.Duration
	PageSize   int

	Comments Comments

	MaxConcurrency int
	DryRun         bool
}

// Comments holds the texts the gardener writes, which double as idempotency markers.
type Comments struct {
	// Tag is appended to every comment the gardener posts.
	Tag string
	// MergeNeeded is a format string taking the base branch name.
	MergeNeeded string
	// BranchDeletion is searched for in existing comments before asking again.
	BranchDeletion string
	// IssueClosed is a format string taking the pull request number and the base branch name.
	IssueClosed string
}

// LoadSettings resolves and validates the engine settings from the Viper instance in ctx.
func LoadSettings(ctx context.Context) (*Settings, error) {
	s := ResolveSettings(ctx)

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// ResolveSettings reads the engine settings from the Viper instance in ctx without validating them.
func ResolveSettings(ctx context.Context) *Settings {
	v := Viper(ctx)

	return &Settings{
		Owner:             v.GetString(GitProject),
		Repositories:      v.GetStringSlice(Repositories),
		Teams:             v.GetStringSlice(Teams),
		DefaultBranch:     v.GetString(DefaultBranch),
		ProtectedBranches: v.GetStringSlice(ProtectedBranches),
		Rules:             v.GetStringSlice(EnabledRules),
		RaceWindow:        v.GetDuration(RaceWindow),
		PageSize:          v.GetInt(PageSize),
		Comments: Comments{
			Tag:            v.GetString(CommentTag),
			MergeNeeded:    v.GetString(MergeNeededMarker),
			BranchDeletion: v.GetString(BranchDeletionMarker),
			IssueClosed:    v.GetString(IssueClosedMarker),
		},
		MaxConcurrency: v.GetInt(MaxConcurrency),
		DryRun:         v.GetBool(DryRun),
	}
}

// Validate reports every missing or invalid setting at once.
func (s *Settings) Validate() error {
	var errs []error

	if s.Owner == "" {
		errs = append(errs, fmt.Errorf("%s is required - set as flag or env", GitProject))
	}

	if len(s.Repositories) == 0 {
		errs = append(errs, fmt.Errorf("at least one repository is required (%s or arguments)", Repositories))
	}

	if s.DefaultBranch == "" {
		errs = append(errs, fmt.Errorf("%s is required", DefaultBranch))
	}

	if s.RaceWindow < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", RaceWindow, s.RaceWindow))
	}

	if s.PageSize <= 0 || s.PageSize > 100 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 100, got %d", PageSize, s.PageSize))
	}

	if s.Comments.BranchDeletion == "" {
		errs = append(errs, fmt.Errorf("%s is required to detect earlier notifications", BranchDeletionMarker))
	}

	if strings.Count(s.Comments.MergeNeeded, "%s") != 1 {
		errs = append(errs, fmt.Errorf("%s must contain exactly one %%s for the base branch", MergeNeededMarker))
	}

	if !validIssueClosed(s.Comments.IssueClosed) {
		errs = append(errs, fmt.Errorf("%s must contain exactly one %%d for the pull request followed by one %%s for the base branch", IssueClosedMarker))
	}

	return errors.Join(errs...)
}

func validIssueClosed(format string) bool {
	return strings.Count(format, "%d") == 1 && strings.Count(format, "%s") == 1 &&
		strings.Index(format, "%d") < strings.Index(format, "%s")
}

// IsProtected reports whether branch is a long-lived integration branch that must never be deleted.
func (s *Settings) IsProtected(branch string) bool {
	return branch == s.DefaultBranch || slices.Contains(s.ProtectedBranches, branch)
}
