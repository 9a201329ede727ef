package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ryclarke/gardener/garden"
)

// StyledSummary renders the report with colors.
func StyledSummary(w io.Writer, report *garden.Report) error {
	return writeSummary(w, report, newSummaryStyles(Width(w), false))
}

// PlainSummary renders the report without colors.
func PlainSummary(w io.Writer, report *garden.Report) error {
	return writeSummary(w, report, newSummaryStyles(Width(w), true))
}

func writeSummary(w io.Writer, report *garden.Report, styles summaryStyles) error {
	var sb strings.Builder

	sb.WriteString(styles.title.Render(fmt.Sprintf(runTitleFormat, report.RunID)))
	if report.DryRun {
		sb.WriteString(styles.dryRun.Render(dryRunSuffix))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.separator.Render(separatorLine) + "\n")

	if report.Err != nil {
		sb.WriteString(styles.repoError.Render(fmt.Sprintf(failureFormat, report.Err)) + "\n")
	}

	var failures int
	for _, repo := range report.Repositories {
		if repo == nil {
			continue
		}

		failures += writeRepository(&sb, repo, styles)
	}

	sb.WriteString(styles.separator.Render(separatorLine) + "\n")

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	sb.WriteString(styles.status.Render(fmt.Sprintf(summaryText, len(report.Repositories), report.Applied(), failures, elapsed)) + "\n")

	_, err := io.WriteString(w, sb.String())

	return err
}

// writeRepository renders one repository section and returns its failure count.
func writeRepository(sb *strings.Builder, repo *garden.RepoReport, styles summaryStyles) int {
	failures := len(repo.Failures)
	stats := styles.stats.Render(fmt.Sprintf(repoStatsFormat, repo.PullRequests, len(repo.Applied)))

	if repo.Err != nil || failures > 0 {
		sb.WriteString(styles.repoError.Render(fmt.Sprintf(repoErrorFormat, repo.Repo)) + "  " + stats + "\n")
	} else {
		sb.WriteString(styles.repoSuccess.Render(fmt.Sprintf(repoSuccessFormat, repo.Repo)) + "  " + stats + "\n")
	}

	if len(repo.Applied) == 0 && repo.Err == nil && failures == 0 {
		sb.WriteString(styles.wrap(styles.stats).Render(noActionsText) + "\n")
	}

	for _, action := range repo.Applied {
		line := styles.rule.Render("["+action.Rule+"]") + " " + styles.action.Render(action.String())
		sb.WriteString(styles.wrap().Render(line) + "\n")
	}

	for _, err := range repo.Failures {
		sb.WriteString(styles.wrap(styles.failure).Render(fmt.Sprintf(failureFormat, err)) + "\n")
	}

	if repo.Err != nil {
		failures++
		sb.WriteString(styles.wrap(styles.repoError).Render(fmt.Sprintf(failureFormat, repo.Err)) + "\n")
	}

	return failures
}

type jsonRepository struct {
	*garden.RepoReport

	Failures []string `json:"failures,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type jsonReport struct {
	*garden.Report

	Repositories []jsonRepository `json:"repositories"`
	Applied      int              `json:"applied"`
	Error        string           `json:"error,omitempty"`
}

// JSONSummary renders the report as indented JSON, with errors flattened to strings.
func JSONSummary(w io.Writer, report *garden.Report) error {
	out := jsonReport{
		Report:       report,
		Repositories: make([]jsonRepository, 0, len(report.Repositories)),
		Applied:      report.Applied(),
		Error:        errorText(report.Err),
	}

	for _, repo := range report.Repositories {
		if repo == nil {
			continue
		}

		jr := jsonRepository{RepoReport: repo, Error: errorText(repo.Err)}
		for _, err := range repo.Failures {
			jr.Failures = append(jr.Failures, err.Error())
		}

		out.Repositories = append(out.Repositories, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
