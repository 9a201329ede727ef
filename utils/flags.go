package utils

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
)

// BuildBoolFlags adds a pair of mutually exclusive boolean flags to the given command.
// The "yes" flag enables the feature (defaulting to value), and the hidden "no" flag disables it.
func BuildBoolFlags(cmd *cobra.Command, value bool, yesName, yesShort, noName, description string) {
	if yesShort != "" {
		cmd.Flags().BoolP(yesName, yesShort, value, description)
	} else {
		cmd.Flags().Bool(yesName, value, description)
	}

	cmd.Flags().Bool(noName, false, "")
	cmd.Flags().MarkHidden(noName)
}

// BindBoolFlags binds a pair of mutually exclusive boolean flags to the current viper context.
func BindBoolFlags(cmd *cobra.Command, key, yesName, noName string) error {
	viper := config.Viper(cmd.Context())
	viper.BindPFlag(key, cmd.Flags().Lookup(yesName))

	// Only allow one of the flags in the pair to be set
	if err := CheckMutuallyExclusiveFlags(cmd, yesName, noName); err != nil {
		return err
	}

	// Override the value if the inverted flag is explicitly set
	if cmd.Flags().Changed(noName) {
		noValue, err := cmd.Flags().GetBool(noName)
		if err != nil {
			return err
		}

		viper.Set(key, !noValue)
	}

	return nil
}

// CheckMutuallyExclusiveFlags validates that at most one of the given flags is set.
// Returns an error if more than one flag is explicitly set.
func CheckMutuallyExclusiveFlags(cmd *cobra.Command, flags ...string) error {
	var setFlags []string

	for _, flagName := range flags {
		if cmd.Flags().Changed(flagName) {
			setFlags = append(setFlags, "--"+flagName)
		}
	}

	if len(setFlags) > 1 {
		return fmt.Errorf("mutually exclusive flags cannot be used together: %s", strings.Join(setFlags, ", "))
	}

	return nil
}
