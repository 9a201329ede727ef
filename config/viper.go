package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// New creates a new Viper instance with default configuration.
func New() *viper.Viper {
	return newViper()
}

// Child creates a new Viper instance that inherits all settings from the parent context.
func Child(ctx context.Context) *viper.Viper {
	v := newViper()

	// Copy all settings from parent Viper
	for key, value := range Viper(ctx).AllSettings() {
		v.Set(key, value)
	}

	return v
}

// LoadFixture loads the fixture configuration found in dir into a fresh Viper instance
// and returns a context carrying it; for testing only!
func LoadFixture(t testing.TB, dir string) context.Context {
	t.Helper()

	v := New()
	v.SetConfigName("fixture")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("Failed to load fixture config: %v", err)
	}

	// keep the ledger out of the user's config directory
	v.Set(HistoryFile, filepath.Join(t.TempDir(), "history.db"))

	return SetViper(context.Background(), v)
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")))
	v.AutomaticEnv() // read in environment variables that match

	// GITHUB_TOKEN is the conventional name in CI environments
	_ = v.BindEnv(AuthToken, "AUTH_TOKEN", authTokenAlias)

	// Initialize default settings
	setDefaults(v)

	return v
}
