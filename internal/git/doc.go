// Package git reads history from a local clone through go-git.
//
// It resolves refs, computes merge bases and produces commit windows for
// range resolution, so a release can be summarised without listing commits
// over the network.
package git
