package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/logging"
	"github.com/ryclarke/gardener/output"
	"github.com/ryclarke/gardener/utils"

	// Register the SCM providers
	_ "github.com/ryclarke/gardener/scm/github"
)

const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	styleFlag     = "style"
)

var logFormats = []string{"text", "json"}

// RootCmd configures the top-level root command along with all subcommands and flags
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gardener",
		Short: "Repository gardening bot for pull requests and issues",
		Long: `Repository gardening bot for pull requests and issues

This tool keeps the repositories of a GitHub organization tidy: it cleans up
workflow labels on closed pull requests, asks for base branches to be merged in,
reminds authors to delete merged branches, and labels or closes the issues that
pull requests resolve.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A config file given on the command line replaces the one found at startup
			if cmd.Flags().Changed(configFlag) {
				cmd.SetContext(config.Init(cmd.Context()))
			}

			viper := config.Viper(cmd.Context())

			viper.BindPFlag(config.LogLevel, cmd.Flags().Lookup(logLevelFlag))
			viper.BindPFlag(config.LogFormat, cmd.Flags().Lookup(logFormatFlag))
			viper.BindPFlag(config.OutputStyle, cmd.Flags().Lookup(styleFlag))

			if err := utils.ValidateEnumConfig(cmd, config.OutputStyle, output.AvailableStyles); err != nil {
				return err
			}

			if err := utils.ValidateEnumConfig(cmd, config.LogFormat, logFormats); err != nil {
				return err
			}

			return logging.Initialize(cmd.ErrOrStderr(), viper.GetString(config.LogLevel), viper.GetString(config.LogFormat))
		},
		SilenceUsage: true,
		Version:      config.Version,
	}

	// Add all subcommands to the root
	rootCmd.AddCommand(
		runCmd(),
		rulesCmd(),
		historyCmd(),
	)

	rootCmd.PersistentFlags().StringVar(&config.CfgFile, configFlag, "", "config file (default is gardener.yaml)")
	rootCmd.PersistentFlags().String(logLevelFlag, "info", "log level: \"debug\", \"info\", \"warn\", \"error\"")
	rootCmd.PersistentFlags().String(logFormatFlag, "text", fmt.Sprintf("log format: \"%v\"", strings.Join(logFormats, "\", \"")))
	rootCmd.PersistentFlags().StringP(styleFlag, "o", output.Auto, fmt.Sprintf("output format style: \"%v\"", strings.Join(output.AvailableStyles, "\", \"")))

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = config.Init(ctx)

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
