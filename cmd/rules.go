package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/garden"
	"github.com/ryclarke/gardener/output"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "List the gardening rules in evaluation order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings := config.ResolveSettings(ctx)

			names := settings.Rules
			if all, _ := cmd.Flags().GetBool("all"); all {
				names = nil
			}

			rules, err := garden.SelectRules(settings, names)
			if err != nil {
				return err
			}

			return output.RulesTable(cmd.OutOrStdout(), rules, output.IsStyled(ctx, cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolP("all", "a", false, "list every rule, including those disabled by configuration")

	return cmd
}
