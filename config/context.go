package config

import (
	"context"
	"sync"

	"github.com/spf13/viper"
)

type viperKey struct{}

// defaults backs contexts that never had a Viper instance attached.
var defaults = sync.OnceValue(New)

// SetViper saves the Viper instance into the context. A nil instance attaches the defaults.
func SetViper(ctx context.Context, v *viper.Viper) context.Context {
	if v == nil {
		v = defaults()
	}

	return context.WithValue(ctx, viperKey{}, v)
}

// Viper retrieves the Viper instance from the context, falling back to the defaults.
func Viper(ctx context.Context) *viper.Viper {
	if v, ok := ctx.Value(viperKey{}).(*viper.Viper); ok {
		return v
	}

	return defaults()
}
