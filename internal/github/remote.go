package github

import (
	"fmt"
	"strings"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseRemoteURL extracts hostname, owner and repo from a git remote URL.
// Both github.com and GitHub Enterprise hosts are accepted:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo
func ParseRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")
	remoteURL = strings.TrimSuffix(remoteURL, "/")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		_, rest, _ := strings.Cut(remoteURL, "://")
		if _, afterUser, ok := strings.Cut(rest, "@"); ok {
			rest = afterUser
		}
		var ok bool
		hostname, path, ok = strings.Cut(rest, "/")
		if !ok {
			return nil, fmt.Errorf("invalid remote URL %q: missing path", remoteURL)
		}
		// ssh://host:22/owner/repo
		hostname, _, _ = strings.Cut(hostname, ":")
	case strings.Contains(remoteURL, "@"):
		_, hostAndPath, _ := strings.Cut(remoteURL, "@")
		var ok bool
		hostname, path, ok = strings.Cut(hostAndPath, ":")
		if !ok {
			hostname, path, ok = strings.Cut(hostAndPath, "/")
			if !ok {
				return nil, fmt.Errorf("invalid SSH remote URL %q: missing path", remoteURL)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid remote URL %q: path must be owner/repo", remoteURL)
	}
	owner := parts[len(parts)-2]
	repo := parts[len(parts)-1]

	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL")
	}

	return &RepoInfo{Hostname: hostname, Owner: owner, Repo: repo}, nil
}
