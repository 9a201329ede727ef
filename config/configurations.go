package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	CfgFile string

	// EnvFile is merged into the process environment before configuration is read.
	// Variables already present in the environment take precedence.
	EnvFile = ".env"

	// Version is dynamically set at build time using the -X linker flag.
	// Default value is used for testing and development builds.
	Version = "dev"
)

const (
	GitProvider = "git.provider"
	GitHost     = "git.host"
	GitProject  = "git.project"

	AuthToken = "auth-token"

	Repositories      = "repos.names"
	Teams             = "teams"
	DefaultBranch     = "branches.default"
	ProtectedBranches = "branches.protected"

	EnabledRules = "rules.enabled"
	RaceWindow   = "rules.race-window"
	PageSize     = "pulls.page-size"

	CommentTag           = "comments.tag"
	MergeNeededMarker    = "comments.merge-needed"
	BranchDeletionMarker = "comments.branch-deletion"
	IssueClosedMarker    = "comments.issue-closed"

	MaxConcurrency = "max-concurrency"
	DryRun         = "dry-run"
	RunTimeout     = "run.timeout"

	WriteBackoff = "github.write-backoff"
	MaxRateWait  = "github.max-rate-wait"

	HistoryEnabled = "history.enabled"
	HistoryFile    = "history.file"

	LogLevel  = "log.level"
	LogFormat = "log.format"

	OutputStyle = "output.style"

	// authTokenAlias is read when auth-token is not set directly.
	authTokenAlias = "GITHUB_TOKEN"
)

// Init loads the environment file, reads in the config file and ENV variables if set,
// and returns a context carrying the resulting Viper instance.
func Init(ctx context.Context) context.Context {
	if err := loadEnvFile(EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not load %s: %v\n", EnvFile, err)
	}

	v := New()

	if CfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(CfgFile)
	} else {
		v.SetConfigName("gardener")

		// Search in the working directory
		v.AddConfigPath(".")

		// Search in the user's config directory
		if usrConfig, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(usrConfig, "gardener"))
		}

		// On Darwin, os.UserConfigDir() returns ~/Library/Application Support.  As this is to be used from
		// the command line, it's more likely that the user will want to use XDG_CONFIG_HOME instead.
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "gardener"))
		} else if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "gardener"))
		}
	}

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %v\n", v.ConfigFileUsed())
	}

	return SetViper(ctx, v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(GitProvider, "github")
	v.SetDefault(GitHost, "github.com")

	v.SetDefault(Repositories, []string{})
	v.SetDefault(Teams, []string{"On-Trial", "Owners"})
	v.SetDefault(DefaultBranch, "develop")
	v.SetDefault(ProtectedBranches, []string{"develop", "master"})

	// empty means every rule, in the default order
	v.SetDefault(EnabledRules, []string{})
	v.SetDefault(RaceWindow, 10*time.Minute)
	v.SetDefault(PageSize, 100)

	v.SetDefault(CommentTag, "[gardening]")
	v.SetDefault(MergeNeededMarker, "needs %s merged in")
	v.SetDefault(BranchDeletionMarker, "branch needs deleting")
	v.SetDefault(IssueClosedMarker, "Resolved by #%d into %s")

	v.SetDefault(MaxConcurrency, 4)
	v.SetDefault(DryRun, false)
	v.SetDefault(RunTimeout, 30*time.Minute)

	v.SetDefault(WriteBackoff, time.Second)
	v.SetDefault(MaxRateWait, 5*time.Minute)

	v.SetDefault(HistoryEnabled, true)
	v.SetDefault(HistoryFile, defaultHistoryFile())

	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "text")

	v.SetDefault(OutputStyle, "auto")
}

// loadEnvFile merges the variables of a dotenv file into the process environment
// without overriding variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	envMap, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	for key, value := range envMap {
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func defaultHistoryFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gardener", "history.db")
	}

	return filepath.Join(".", ".gardener-history.db")
}
