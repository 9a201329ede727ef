package garden

import (
	"context"
	"fmt"

	"github.com/ryclarke/gardener/scm"
)

// ActionKind identifies the mutation an Action performs.
type ActionKind string

const (
	ActionAddLabel    ActionKind = "add-label"
	ActionRemoveLabel ActionKind = "remove-label"
	ActionComment     ActionKind = "comment"
	ActionCloseIssue  ActionKind = "close-issue"
)

// Action is a single idempotent mutation decided by a rule.
type Action struct {
	Kind ActionKind `json:"kind"`
	// Number is the issue or pull request the action targets.
	Number int    `json:"number"`
	Label  string `json:"label,omitempty"`
	Body   string `json:"body,omitempty"`

	// Rule and PullRequest record which evaluation produced the action; set by the engine.
	Rule        string `json:"rule"`
	PullRequest int    `json:"pull_request"`
}

func addLabel(number int, label string) Action {
	return Action{Kind: ActionAddLabel, Number: number, Label: label}
}

func removeLabel(number int, label string) Action {
	return Action{Kind: ActionRemoveLabel, Number: number, Label: label}
}

func comment(number int, body string) Action {
	return Action{Kind: ActionComment, Number: number, Body: body}
}

func closeIssue(number int) Action {
	return Action{Kind: ActionCloseIssue, Number: number}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAddLabel:
		return fmt.Sprintf("add label %q to #%d", a.Label, a.Number)
	case ActionRemoveLabel:
		return fmt.Sprintf("remove label %q from #%d", a.Label, a.Number)
	case ActionComment:
		return fmt.Sprintf("comment on #%d: %s", a.Number, a.Body)
	case ActionCloseIssue:
		return fmt.Sprintf("close issue #%d", a.Number)
	default:
		return fmt.Sprintf("%s #%d", a.Kind, a.Number)
	}
}

// Apply performs the action against the gateway. Removing a label that is already gone counts
// as success.
func (a Action) Apply(ctx context.Context, gw scm.Gateway, repo scm.Repository) error {
	var err error

	switch a.Kind {
	case ActionAddLabel:
		err = gw.AddLabels(ctx, repo.Owner, repo.Name, a.Number, a.Label)
	case ActionRemoveLabel:
		if err = gw.RemoveLabel(ctx, repo.Owner, repo.Name, a.Number, a.Label); scm.IsNotFound(err) {
			err = nil
		}
	case ActionComment:
		err = gw.CreateComment(ctx, repo.Owner, repo.Name, a.Number, a.Body)
	case ActionCloseIssue:
		err = gw.SetIssueState(ctx, repo.Owner, repo.Name, a.Number, scm.IssueClosed)
	default:
		err = fmt.Errorf("unknown action kind %q", a.Kind)
	}

	if err != nil {
		return fmt.Errorf("failed to %s: %w", a, err)
	}

	return nil
}
