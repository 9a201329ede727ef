package utils

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
)

func loadFixture(t *testing.T) context.Context {
	t.Helper()
	return config.LoadFixture(t, "../config")
}

func TestCheckMutuallyExclusiveFlags(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]string
		wantErr bool
	}{
		{name: "no flags set", set: map[string]string{}},
		{name: "sync only", set: map[string]string{"sync": "true"}},
		{name: "max-concurrency only", set: map[string]string{"max-concurrency": "8"}},
		{name: "sync and max-concurrency", set: map[string]string{"sync": "true", "max-concurrency": "8"}, wantErr: true},
		{name: "explicit false still counts as set", set: map[string]string{"sync": "false", "max-concurrency": "1"}, wantErr: true},
		{name: "unrelated flag ignored", set: map[string]string{"sync": "true", "dry-run": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			cmd.Flags().Bool("sync", false, "")
			cmd.Flags().Int("max-concurrency", 4, "")
			cmd.Flags().Bool("dry-run", false, "")

			for name, value := range tt.set {
				if err := cmd.Flags().Set(name, value); err != nil {
					t.Fatalf("Failed to set flag %s: %v", name, err)
				}
			}

			err := CheckMutuallyExclusiveFlags(cmd, "sync", "max-concurrency")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error = %v, got: %v", tt.wantErr, err)
			}

			if err != nil && !strings.Contains(err.Error(), "--sync, --max-concurrency") {
				t.Errorf("Error message should name both flags, got: %q", err)
			}
		})
	}
}

func TestBuildBoolFlags(t *testing.T) {
	tests := []struct {
		name        string
		value       bool
		yesName     string
		yesShort    string
		noName      string
		description string
	}{
		{
			name:        "enabled by default with short flag",
			value:       true,
			yesName:     "history",
			yesShort:    "H",
			noName:      "no-history",
			description: "record the run",
		},
		{
			name:        "disabled by default with short flag",
			value:       false,
			yesName:     "dry-run",
			yesShort:    "n",
			noName:      "no-dry-run",
			description: "report actions without applying them",
		},
		{
			name:        "no short flag",
			value:       true,
			yesName:     "sort",
			noName:      "no-sort",
			description: "sort the output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}

			BuildBoolFlags(cmd, tt.value, tt.yesName, tt.yesShort, tt.noName, tt.description)

			// Verify yes flag exists with correct defaults
			yesFlag := cmd.Flags().Lookup(tt.yesName)
			if yesFlag == nil {
				t.Errorf("Flag %q should exist", tt.yesName)
				return
			}
			if yesFlag.DefValue != fmt.Sprintf("%t", tt.value) {
				t.Errorf("Flag %q default should be %t, got %q", tt.yesName, tt.value, yesFlag.DefValue)
			}
			if yesFlag.Usage != tt.description {
				t.Errorf("Flag %q usage should be %q, got %q", tt.yesName, tt.description, yesFlag.Usage)
			}

			// Verify no flag exists and is hidden
			noFlag := cmd.Flags().Lookup(tt.noName)
			if noFlag == nil {
				t.Errorf("Flag %q should exist", tt.noName)
				return
			}
			if noFlag.DefValue != "false" {
				t.Errorf("Flag %q default should be false, got %q", tt.noName, noFlag.DefValue)
			}
			if !noFlag.Hidden {
				t.Errorf("Flag %q should be hidden", tt.noName)
			}

			if tt.yesShort != "" {
				shortFlag := cmd.Flags().ShorthandLookup(tt.yesShort)
				if shortFlag == nil {
					t.Errorf("Short flag %q should exist for %q", tt.yesShort, tt.yesName)
				} else if shortFlag.Name != tt.yesName {
					t.Errorf("Short flag %q should map to %q, got %q", tt.yesShort, tt.yesName, shortFlag.Name)
				}
			}
		})
	}
}

func TestBindBoolFlags(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		yesName string
		noName  string
		args    []string
		wantErr bool
		want    bool
	}{
		{name: "config value wins over flag default", key: config.HistoryEnabled, yesName: "history", noName: "no-history", want: false},
		{name: "yes flag overrides config", key: config.HistoryEnabled, yesName: "history", noName: "no-history", args: []string{"--history"}, want: true},
		{name: "no flag disables", key: config.HistoryEnabled, yesName: "history", noName: "no-history", args: []string{"--no-history"}, want: false},
		{name: "no flag set to false enables", key: config.HistoryEnabled, yesName: "history", noName: "no-history", args: []string{"--no-history=false"}, want: true},
		{name: "both flags set", key: config.HistoryEnabled, yesName: "history", noName: "no-history", args: []string{"--history", "--no-history"}, wantErr: true},
		{name: "default applies when unset", key: config.DryRun, yesName: "dry-run", noName: "no-dry-run", want: false},
		{name: "short flag", key: config.DryRun, yesName: "dry-run", noName: "no-dry-run", args: []string{"-n"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := loadFixture(t)

			cmd := &cobra.Command{Use: "test"}
			cmd.SetContext(ctx)

			short := ""
			if tt.key == config.DryRun {
				short = "n"
			}

			BuildBoolFlags(cmd, tt.key != config.DryRun, tt.yesName, short, tt.noName, "")

			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("Failed to parse flags: %v", err)
			}

			err := BindBoolFlags(cmd, tt.key, tt.yesName, tt.noName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error = %v, got: %v", tt.wantErr, err)
			}

			if tt.wantErr {
				return
			}

			if got := config.Viper(ctx).GetBool(tt.key); got != tt.want {
				t.Errorf("Config %q = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
