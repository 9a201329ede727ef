// Package utils provides command line helpers shared by the gardener commands.
package utils

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"

	"github.com/ryclarke/gardener/config"
)

// ValidateRequiredConfig checks viper and returns an error if a key isn't set
func ValidateRequiredConfig(ctx context.Context, opts ...string) error {
	viper := config.Viper(ctx)

	for _, opt := range opts {
		if viper.GetString(opt) == "" {
			return fmt.Errorf("%s is required - set as flag or env", opt)
		}
	}

	return nil
}

// ValidateEnumConfig validates that a config value is one of the allowed choices.
func ValidateEnumConfig(cmd *cobra.Command, key string, validChoices []string) error {
	viper := config.Viper(cmd.Context())

	if value := viper.GetString(key); value != "" && !mapset.NewSet(validChoices...).Contains(value) {
		return fmt.Errorf("invalid %s: %q (expected one of %v)", key, value, validChoices)
	}

	return nil
}
