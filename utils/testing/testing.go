// Package testing provides utility functions for testing purposes across multiple packages.
package testing

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/scm"
	"github.com/ryclarke/gardener/scm/fake"
)

// LoadFixture loads test configuration from the config package.
// The configPath parameter should be the relative path from the test file
// to the config directory (e.g., "../config", "../../config").
func LoadFixture(t *testing.T, configPath string) context.Context {
	t.Helper()

	return config.LoadFixture(t, configPath)
}

// LoadSettings loads the fixture configuration and resolves the engine settings from it.
func LoadSettings(t *testing.T, configPath string) (context.Context, *config.Settings) {
	t.Helper()

	ctx := LoadFixture(t, configPath)

	settings, err := config.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("Failed to load fixture settings: %v", err)
	}

	return ctx, settings
}

// SetupFakeGateway registers the fake provider under the fixture's provider name and returns an
// empty fake whose teams match the fixture. The fake is returned by every scm.Get call until the
// test ends.
func SetupFakeGateway(t *testing.T, ctx context.Context) *fake.Fake {
	t.Helper()

	v := config.Viper(ctx)
	gw := fake.NewFake(v.GetString(config.GitProject))

	for i, team := range v.GetStringSlice(config.Teams) {
		gw.AddTeam(scm.Team{ID: int64(i + 1), Name: team, Slug: team})
	}

	fake.Use(t, gw)

	return gw
}

// FakeCmd creates a minimal cobra.Command for testing with the given context and output writer.
func FakeCmd(t *testing.T, ctx context.Context, out io.Writer) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{
		Use: "test",
	}
	cmd.SetContext(ctx)
	cmd.SetOut(out)
	cmd.SetErr(out)

	return cmd
}
