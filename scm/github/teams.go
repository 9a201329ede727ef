package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v74/github"

	"github.com/ryclarke/gardener/scm"
)

// ListTeams lists every team of the organization.
func (g *Github) ListTeams(ctx context.Context, owner string) ([]scm.Team, error) {
	teams, err := collect(ctx, g, fmt.Sprintf("list teams of %s", owner), func(opt github.ListOptions) ([]*github.Team, *github.Response, error) {
		return g.client.Teams.ListTeams(ctx, owner, &opt)
	})
	if err != nil {
		return nil, err
	}

	output := make([]scm.Team, 0, len(teams))
	for _, team := range teams {
		output = append(output, scm.Team{ID: team.GetID(), Name: team.GetName(), Slug: team.GetSlug()})
	}

	return output, nil
}

// ListTeamMembers lists the member logins of a team.
func (g *Github) ListTeamMembers(ctx context.Context, owner string, team scm.Team) ([]string, error) {
	users, err := collect(ctx, g, fmt.Sprintf("list members of team %s", team.Slug), func(opt github.ListOptions) ([]*github.User, *github.Response, error) {
		return g.client.Teams.ListTeamMembersBySlug(ctx, owner, team.Slug, &github.TeamListTeamMembersOptions{ListOptions: opt})
	})
	if err != nil {
		return nil, err
	}

	output := make([]string, 0, len(users))
	for _, user := range users {
		output = append(output, user.GetLogin())
	}

	return output, nil
}
