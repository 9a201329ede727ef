package garden

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/scm"
	testhelper "github.com/ryclarke/gardener/utils/testing"
)

func TestGardenerRun(t *testing.T) {
	settings := loadSettings(t)
	gw, repo := setupGateway(t)
	seedRepository(repo)

	gw.AddRepo("wp-offload-media").
		AddPull(openPR(7, "feature", "develop", "bob", "resolves #8")).
		AddIssue(scm.Issue{Number: 8, State: scm.IssueOpen})

	report := New(gw, settings, DefaultRules(settings)).Run(context.Background())

	testhelper.AssertError(t, report.Failed(), false)
	testhelper.AssertNotEmpty(t, report.RunID)
	testhelper.AssertEqual(t, report.Owner, testOwner)
	testhelper.AssertLength(t, report.Repositories, 2)

	testhelper.AssertEqual(t, report.Repositories[0].Repo.Name, testRepo)
	testhelper.AssertEqual(t, report.Repositories[1].Repo.Name, "wp-offload-media")
	testhelper.AssertEqual(t, report.Applied(), 10)

	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("Expected the run to finish after it started")
	}

	// maintainers of the fixture teams are resolved once for every repository
	testhelper.AssertContains(t, gw.CommentsOf(testRepo, 1)[0].Body, "@alice")
}

func TestGardenerRunExplicitRepositories(t *testing.T) {
	settings := loadSettings(t)
	settings.MaxConcurrency = 1

	gw, _ := setupGateway(t)

	report := New(gw, settings, DefaultRules(settings)).Run(context.Background(), testRepo, "missing")

	testhelper.AssertLength(t, report.Repositories, 2)
	testhelper.AssertError(t, report.Repositories[0].Failed(), false)

	if !scm.IsNotFound(report.Repositories[1].Err) {
		t.Errorf("Expected the missing repository to fail with not found, got: %v", report.Repositories[1].Err)
	}

	testhelper.AssertError(t, report.Failed(), true)
}

func TestGardenerRunLogsRunID(t *testing.T) {
	settings := loadSettings(t)
	settings.MaxConcurrency = 1

	gw, _ := setupGateway(t)

	previous := logging.Logger
	t.Cleanup(func() { logging.Logger = previous })

	var buf bytes.Buffer
	testhelper.AssertError(t, logging.Initialize(&buf, "debug", "json"), false)

	report := New(gw, settings, DefaultRules(settings)).Run(context.Background(), testRepo, "missing")

	var repoRecords int

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("Failed to decode log record %q: %v", line, err)
		}

		if msg := record["msg"]; msg != "processing repository" && msg != "failed to build repository context" {
			continue
		}

		repoRecords++
		testhelper.AssertEqual(t, record["run"], report.RunID)
	}

	testhelper.AssertEqual(t, repoRecords, 2)
}

func TestGardenerRunTeamFailure(t *testing.T) {
	settings := loadSettings(t)
	gw, repo := setupGateway(t)
	seedRepository(repo)

	gw.SetError("ListTeams", errors.New("forbidden"))

	report := New(gw, settings, DefaultRules(settings)).Run(context.Background())

	testhelper.AssertError(t, report.Err, true)
	testhelper.AssertContains(t, report.Failed().Error(), "forbidden")
	testhelper.AssertEqual(t, report.Applied(), 0)
	testhelper.AssertLength(t, gw.Mutations(), 0)
}

func TestGardenerRunDryRun(t *testing.T) {
	settings := loadSettings(t)
	settings.DryRun = true

	gw, repo := setupGateway(t)
	seedRepository(repo)

	report := New(gw, settings, DefaultRules(settings)).Run(context.Background(), testRepo)

	testhelper.AssertEqual(t, report.DryRun, true)
	testhelper.AssertLength(t, gw.Mutations(), 0)

	if report.Applied() == 0 {
		t.Error("Expected planned actions in dry-run mode")
	}
}
