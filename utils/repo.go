package utils

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ryclarke/gardener/config"
)

// ParseRepo splits a repo identifier ("name" or "owner/name") into its component parts.
// A bare name belongs to the configured project.
func ParseRepo(ctx context.Context, repo string) (owner, name string) {
	parts := strings.Split(strings.Trim(repo, "/ "), "/")
	name = parts[len(parts)-1]

	if len(parts) > 1 {
		owner = parts[len(parts)-2]
	} else {
		owner = config.Viper(ctx).GetString(config.GitProject)
	}

	return owner, name
}

// RepoNames resolves repository arguments to names within the configured project, dropping
// duplicates while keeping the given order.
func RepoNames(ctx context.Context, repos []string) ([]string, error) {
	project := config.Viper(ctx).GetString(config.GitProject)

	seen := mapset.NewThreadUnsafeSet[string]()
	names := make([]string, 0, len(repos))

	for _, repo := range repos {
		owner, name := ParseRepo(ctx, repo)
		if name == "" {
			return nil, fmt.Errorf("invalid repository %q", repo)
		}

		if !strings.EqualFold(owner, project) {
			return nil, fmt.Errorf("repository %q is outside the configured project %q", repo, project)
		}

		if seen.Add(name) {
			names = append(names, name)
		}
	}

	return names, nil
}
