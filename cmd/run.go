package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/garden"
	"github.com/ryclarke/gardener/history"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/output"
	"github.com/ryclarke/gardener/scm"
	"github.com/ryclarke/gardener/utils"
)

const (
	dryRunFlag         = "dry-run"
	noDryRunFlag       = "no-dry-run"
	historyFlag        = "history"
	noHistoryFlag      = "no-history"
	syncFlag           = "sync"
	maxConcurrencyFlag = "max-concurrency"
	ruleFlag           = "rule"
)

// ErrRunFailed is returned when a run finished with at least one error.
var ErrRunFailed = errors.New("gardening run finished with errors")

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [repository] ...",
		Short: "Apply the gardening rules to repositories",
		Long: `Apply the gardening rules to repositories

Every pull request of each repository is evaluated against the enabled rules, and the
resulting label, comment and issue changes are applied right away. Repositories may be
given as "name" or "owner/name"; with no arguments the configured repositories are used.`,
		ValidArgsFunction: repoCompletion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			viper := config.Viper(cmd.Context())

			if err := utils.BindBoolFlags(cmd, config.DryRun, dryRunFlag, noDryRunFlag); err != nil {
				return err
			}

			if err := utils.BindBoolFlags(cmd, config.HistoryEnabled, historyFlag, noHistoryFlag); err != nil {
				return err
			}

			if err := utils.CheckMutuallyExclusiveFlags(cmd, syncFlag, maxConcurrencyFlag); err != nil {
				return err
			}

			viper.BindPFlag(config.MaxConcurrency, cmd.Flags().Lookup(maxConcurrencyFlag))

			// Allow the `--sync` flag to override max-concurrency to 1
			if sync, _ := cmd.Flags().GetBool(syncFlag); sync {
				viper.Set(config.MaxConcurrency, 1)
			}

			if cmd.Flags().Changed(ruleFlag) {
				rules, _ := cmd.Flags().GetStringSlice(ruleFlag)
				viper.Set(config.EnabledRules, rules)
			}

			if len(args) > 0 {
				names, err := utils.RepoNames(cmd.Context(), args)
				if err != nil {
					return err
				}

				viper.Set(config.Repositories, names)
			}

			if viper.GetString(config.GitProvider) == "github" {
				return utils.ValidateRequiredConfig(cmd.Context(), config.AuthToken)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGardener(cmd)
		},
	}

	utils.BuildBoolFlags(cmd, false, dryRunFlag, "n", noDryRunFlag, "report the actions without applying them")
	utils.BuildBoolFlags(cmd, true, historyFlag, "", noHistoryFlag, "record the run in the history ledger")

	cmd.Flags().Bool(syncFlag, false, "process repositories one at a time (alias for --max-concurrency=1)")
	cmd.Flags().Int(maxConcurrencyFlag, 4, "maximum number of repositories processed concurrently")
	cmd.Flags().StringSliceP(ruleFlag, "r", nil, "run only the named rule(s), in evaluation order")

	cmd.RegisterFlagCompletionFunc(ruleFlag, ruleCompletion)

	return cmd
}

func runGardener(cmd *cobra.Command) error {
	ctx := cmd.Context()
	viper := config.Viper(ctx)

	settings, err := config.LoadSettings(ctx)
	if err != nil {
		return err
	}

	rules, err := garden.SelectRules(settings, settings.Rules)
	if err != nil {
		return err
	}

	provider := viper.GetString(config.GitProvider)
	if !scm.Registered(provider) {
		return fmt.Errorf("unknown SCM provider %q", provider)
	}

	if timeout := viper.GetDuration(config.RunTimeout); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	gw := scm.Get(ctx, provider, settings.Owner)
	report := garden.New(gw, settings, rules).Run(ctx)

	out := cmd.OutOrStdout()
	if err := output.GetHandler(ctx, out)(out, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if viper.GetBool(config.HistoryEnabled) {
		// a failed ledger write only warns
		if err := saveRun(context.WithoutCancel(ctx), viper.GetString(config.HistoryFile), report); err != nil {
			logging.Logger.Warn("failed to record run", "run", report.RunID, "error", err)
		}
	}

	if report.Failed() != nil {
		return fmt.Errorf("%w: run %s", ErrRunFailed, report.RunID)
	}

	return nil
}

func saveRun(ctx context.Context, path string, report *garden.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveRun(ctx, report)
}
