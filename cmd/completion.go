package cmd

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/garden"
)

// repoCompletion suggests configured repositories not already given.
func repoCompletion(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	given := mapset.NewThreadUnsafeSet(args...)

	var completions []cobra.Completion
	for _, repo := range config.Viper(cmd.Context()).GetStringSlice(config.Repositories) {
		if !given.Contains(repo) && strings.HasPrefix(repo, toComplete) {
			completions = append(completions, repo)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// ruleCompletion suggests rule names.
func ruleCompletion(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	var completions []cobra.Completion
	for _, name := range garden.RuleNames() {
		if strings.HasPrefix(name, toComplete) {
			completions = append(completions, name)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}
