package garden

import (
	"github.com/ryclarke/gardener/scm"
)

// ResolveNotifyLogin returns the login to mention about pr. Authors outside the maintainer
// teams may not watch the tracker, so the last committer on the repository is mentioned instead.
func ResolveNotifyLogin(pr scm.PullRequest, rc *RepositoryContext) string {
	if rc.TeamMembers != nil && rc.TeamMembers.Contains(pr.Author) {
		return pr.Author
	}

	return rc.LastCommitter
}

// mention formats an @-mention, or nothing when no login could be resolved.
func mention(login string) string {
	if login == "" {
		return ""
	}

	return "@" + login + " "
}
