package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/history"
	"github.com/ryclarke/gardener/output"
)

const limitFlag = "limit"

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded gardening runs",
		Long: `Show recorded gardening runs

With no arguments the most recent runs are listed. Given a run ID, the actions
applied (or planned, for a dry run) during that run are listed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			styled := output.IsStyled(ctx, out)

			store, err := history.Open(config.Viper(ctx).GetString(config.HistoryFile))
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) > 0 {
				actions, err := store.Actions(ctx, args[0])
				if err != nil {
					return err
				}

				if len(actions) == 0 {
					return fmt.Errorf("no actions recorded for run %q", args[0])
				}

				return output.ActionsTable(out, actions, styled)
			}

			limit, err := cmd.Flags().GetInt(limitFlag)
			if err != nil {
				return err
			}

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}

			return output.HistoryTable(out, runs, styled)
		},
	}

	cmd.Flags().IntP(limitFlag, "l", 10, "maximum number of runs to list")

	return cmd
}
