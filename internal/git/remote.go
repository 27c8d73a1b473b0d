package git

import (
	"fmt"

	"prsummary.dev/prsummary/internal/github"
)

// DefaultRemote is the remote consulted when none is configured
const DefaultRemote = "origin"

// RemoteRepo returns the forge repository a remote points at
func (r *Repository) RemoteRepo(name string) (*github.RepoInfo, error) {
	if name == "" {
		name = DefaultRemote
	}
	remote, err := r.Remote(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("remote %s has no URL", name)
	}
	return github.ParseRemoteURL(urls[0])
}
