package garden

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/scm"
)

// Labels managed by the gardener.
const (
	LabelReadyForReview = "ready for review"
	LabelNeedsMerge     = "needs merge"
	LabelHasPR          = "has PR"
)

// Rule names, in the order DefaultRules runs them.
const (
	RuleCleanClosedLabels     = "clean-closed-labels"
	RuleNotifyMergeIssues     = "notify-merge-issues"
	RuleNotifyUndeletedBranch = "notify-undeleted-branches"
	RuleLabelIssuesWithPR     = "label-issues-with-pr"
	RuleCloseIssuesNonDefault = "close-issues-non-default"
)

// Rule is a maintenance policy evaluated against one pull request. Rules only read state;
// the mutations they decide on are returned as actions for the engine to apply.
type Rule interface {
	Name() string
	// Scope is the pull request state the rule applies to.
	Scope() scm.PullRequestState
	Evaluate(ctx context.Context, pr scm.PullRequest, rc *RepositoryContext) ([]Action, error)
}

type ruleFactory func(s *config.Settings) Rule

var ruleFactories = []struct {
	name string
	new  ruleFactory
}{
	{RuleCleanClosedLabels, func(s *config.Settings) Rule { return NewCleanClosedLabels() }},
	{RuleNotifyMergeIssues, func(s *config.Settings) Rule { return NewNotifyMergeIssues(s) }},
	{RuleNotifyUndeletedBranch, func(s *config.Settings) Rule { return NewNotifyUndeletedBranches(s) }},
	{RuleLabelIssuesWithPR, func(s *config.Settings) Rule { return NewLabelIssuesWithPR() }},
	{RuleCloseIssuesNonDefault, func(s *config.Settings) Rule { return NewCloseIssuesNonDefault(s) }},
}

// RuleNames lists every known rule name in evaluation order.
func RuleNames() []string {
	names := make([]string, 0, len(ruleFactories))
	for _, f := range ruleFactories {
		names = append(names, f.name)
	}

	return names
}

// DefaultRules returns every rule in evaluation order.
func DefaultRules(s *config.Settings) []Rule {
	rules := make([]Rule, 0, len(ruleFactories))
	for _, f := range ruleFactories {
		rules = append(rules, f.new(s))
	}

	return rules
}

// SelectRules returns the named rules, still in evaluation order. No names selects every rule.
func SelectRules(s *config.Settings, names []string) ([]Rule, error) {
	if len(names) == 0 {
		return DefaultRules(s), nil
	}

	wanted := mapset.NewSet(names...)

	var unknown []string
	for name := range wanted.Iter() {
		if !slices.Contains(RuleNames(), name) {
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown rules %s (valid rules: %s)", strings.Join(unknown, ", "), strings.Join(RuleNames(), ", "))
	}

	rules := make([]Rule, 0, wanted.Cardinality())
	for _, f := range ruleFactories {
		if wanted.Contains(f.name) {
			rules = append(rules, f.new(s))
		}
	}

	return rules, nil
}

// tagged appends the comment tag to text.
func tagged(s *config.Settings, text string) string {
	if s.Comments.Tag == "" {
		return text
	}

	return text + " " + s.Comments.Tag
}

// isFatal reports whether err must stop the current repository pass.
func isFatal(err error) bool {
	return scm.IsTransient(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
