package config

import (
	"context"
	"testing"
)

func TestViperDefaults(t *testing.T) {
	v := Viper(context.Background())

	if got := v.GetString(DefaultBranch); got != "develop" {
		t.Errorf("Expected default branch develop, got %q", got)
	}

	if SetViper(context.Background(), nil) == nil {
		t.Fatal("SetViper returned nil context")
	}

	if Viper(SetViper(context.Background(), nil)) != v {
		t.Error("Expected a nil instance to attach the defaults")
	}
}

func TestSetViper(t *testing.T) {
	v := New()
	v.Set(GitProject, "humanmade")

	ctx := SetViper(context.Background(), v)

	if Viper(ctx) != v {
		t.Fatal("Expected the attached instance")
	}

	if got := Viper(ctx).GetString(GitProject); got != "humanmade" {
		t.Errorf("Expected project humanmade, got %q", got)
	}
}
