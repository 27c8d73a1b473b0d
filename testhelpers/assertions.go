// Package testhelpers provides test fixtures for pr-summary: a mock GitHub
// server for both API flavors, commit graph builders and assertions.
package testhelpers

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/stretchr/testify/require"
)

// Must panics if err is not nil, otherwise returns val.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectCommits asserts that the newest commits reachable from branch, in
// committer-time order, have the expected subjects.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	iter, err := repo.Repo.Log(&git.LogOptions{From: repo.Tip(branch), Order: git.LogOrderCommitterTime})
	require.NoError(t, err, "Failed to list commits")
	defer iter.Close()

	var subjects []string
	err = iter.ForEach(func(c *object.Commit) error {
		if len(subjects) == len(expected) {
			return storer.ErrStop
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		subjects = append(subjects, subject)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		require.NoError(t, err, "Failed to list commits")
	}

	require.Equal(t, expected, subjects, "Commits do not match")
}
