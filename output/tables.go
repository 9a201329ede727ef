package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ryclarke/gardener/garden"
	"github.com/ryclarke/gardener/history"
)

const timeLayout = "2006-01-02 15:04:05"

// RulesTable lists rules with the pull request state each applies to.
func RulesTable(w io.Writer, rules []garden.Rule, styled bool) error {
	t := newTable(styled, "RULE", "SCOPE")
	for _, rule := range rules {
		t.Row(rule.Name(), string(rule.Scope()))
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

// HistoryTable lists recorded runs, most recent first.
func HistoryTable(w io.Writer, runs []history.RunModel, styled bool) error {
	t := newTable(styled, "RUN", "STARTED", "ELAPSED", "REPOSITORIES", "ACTIONS", "STATUS")

	for _, run := range runs {
		status := "ok"
		if run.Failed {
			status = "failed"
		}

		if run.DryRun {
			status += " (dry run)"
		}

		t.Row(
			run.ID,
			run.StartedAt.Local().Format(timeLayout),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(len(run.Repositories)),
			strconv.Itoa(run.Applied),
			status,
		)
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

// ActionsTable lists the actions recorded for one run.
func ActionsTable(w io.Writer, actions []history.ActionModel, styled bool) error {
	t := newTable(styled, "RULE", "PR", "ACTION")

	for _, a := range actions {
		action := garden.Action{Kind: garden.ActionKind(a.Kind), Number: a.Number, Label: a.Label, Body: a.Body}
		t.Row(a.Rule, "#"+strconv.Itoa(a.PullRequest), action.String())
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

func newTable(styled bool, headers ...string) *table.Table {
	t := table.New().Headers(headers...).Border(lipgloss.NormalBorder())
	if !styled {
		return t
	}

	header := color(colorPurple).Bold(true).Padding(0, 1)
	cell := color(colorForeground).Padding(0, 1)

	return t.
		BorderStyle(color(colorComment)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}

			return cell
		})
}
