package resolver

import (
	"context"
	"fmt"

	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
)

// CommitSet is a set of commits keyed by SHA that remembers insertion order
// for display. Adding a SHA that is already present keeps the first-seen data.
type CommitSet struct {
	order   []string
	commits map[string]model.Commit
}

// NewCommitSet returns a set holding commits
func NewCommitSet(commits ...model.Commit) *CommitSet {
	s := &CommitSet{commits: make(map[string]model.Commit, len(commits))}
	s.Add(commits...)
	return s
}

// Add inserts commits and returns how many were new
func (s *CommitSet) Add(commits ...model.Commit) int {
	added := 0
	for _, c := range commits {
		if _, ok := s.commits[c.SHA]; ok {
			continue
		}
		s.commits[c.SHA] = c
		s.order = append(s.order, c.SHA)
		added++
	}
	return added
}

// Contains reports whether sha is in the set
func (s *CommitSet) Contains(sha string) bool {
	if sha == "" {
		return false
	}
	_, ok := s.commits[sha]
	return ok
}

// Get returns the commit for sha
func (s *CommitSet) Get(sha string) (model.Commit, bool) {
	c, ok := s.commits[sha]
	return c, ok
}

// Len returns the number of commits in the set
func (s *CommitSet) Len() int {
	return len(s.order)
}

// Commits returns the commits in insertion order
func (s *CommitSet) Commits() []model.Commit {
	out := make([]model.Commit, 0, len(s.order))
	for _, sha := range s.order {
		out = append(out, s.commits[sha])
	}
	return out
}

// SHAs returns the commit SHAs in insertion order
func (s *CommitSet) SHAs() []string {
	return append([]string(nil), s.order...)
}

// CommitSetBuilder accumulates the commits of a pull request or ref from a
// paged commit listing.
type CommitSetBuilder struct {
	client   github.Client
	perPage  int
	maxPages int
}

// NewCommitSetBuilder creates a builder listing perPage commits per request.
// maxPages bounds the listing; zero means unbounded.
func NewCommitSetBuilder(client github.Client, perPage, maxPages int) *CommitSetBuilder {
	return &CommitSetBuilder{client: client, perPage: perPage, maxPages: maxPages}
}

// BuildResult is the accumulated set plus the ref metadata reported by the
// first page.
type BuildResult struct {
	Set  *CommitSet
	Head *model.RefTip
	Base *model.RefTip
	// Pages is the number of pages requested
	Pages int
	// Truncated is set when the page limit ended the listing early
	Truncated bool
}

// Build lists every commit in scope. until, when non-nil, is called with each
// new batch and ends the listing once it returns true.
func (b *CommitSetBuilder) Build(ctx context.Context, owner, repo string, scope github.CommitScope, until func(batch []model.Commit) bool) (*BuildResult, error) {
	result := &BuildResult{Set: NewCommitSet()}
	opts := github.ListCommitsOptions{Scope: scope, PerPage: b.perPage}

	fetch := func(ctx context.Context, cursor string) (Page[model.Commit], error) {
		page, err := b.client.ListCommits(ctx, owner, repo, opts, cursor)
		if err != nil {
			return Page[model.Commit]{}, err
		}
		if cursor == "" {
			result.Head = page.Head
			result.Base = page.Base
		}
		return Page[model.Commit]{Items: page.Commits, Next: page.Next, Done: !page.HasNext}, nil
	}

	var stop StopFunc[model.Commit]
	if until != nil {
		stop = func(_, batch []model.Commit) bool {
			return until(batch)
		}
	}

	pager := NewPager(fetch, stop).LimitPages(b.maxPages)
	for pager.Next(ctx) {
		result.Set.Add(pager.Batch()...)
	}
	if err := pager.Err(); err != nil {
		return nil, fmt.Errorf("failed to list commits of %s/%s %s: %w", owner, repo, scope, err)
	}

	result.Pages = pager.Pages()
	result.Truncated = pager.Limited()
	return result, nil
}
