package resolver

import (
	"context"
	"fmt"

	prerrors "prsummary.dev/prsummary/internal/errors"
	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
)

// DefaultMaxFetchPRs bounds how many pull requests a candidate scan reads
const DefaultMaxFetchPRs = 5000

// CandidateFetcher scans merged pull requests into a base branch, most
// recently updated first, and stops once it has moved past the block of pull
// requests that match.
type CandidateFetcher struct {
	client   github.Client
	perPage  int
	maxFetch int
}

// NewCandidateFetcher creates a fetcher reading perPage pull requests per
// request and at most maxFetch in total (DefaultMaxFetchPRs when zero).
func NewCandidateFetcher(client github.Client, perPage, maxFetch int) *CandidateFetcher {
	if maxFetch <= 0 {
		maxFetch = DefaultMaxFetchPRs
	}
	return &CandidateFetcher{client: client, perPage: perPage, maxFetch: maxFetch}
}

// CandidateResult is the outcome of a candidate scan
type CandidateResult struct {
	// Matches are the merged pull requests accepted by the match function, in scan order
	Matches []model.PullRequest
	// Fetched counts pull requests read from the forge before filtering
	Fetched      int
	Pages        int
	RangeStarted bool
	RangeEnded   bool
	// Warning is a RangeExhaustedWarning when the ceiling was hit before the range ended
	Warning error
}

// rangeTracker implements the started/ended heuristic. A page with a match
// starts the range; the first page without one after that ends it.
type rangeTracker struct {
	match   func(model.PullRequest) bool
	started bool
	ended   bool
}

func (r *rangeTracker) observe(batch []model.PullRequest) {
	for _, pr := range batch {
		if pr.IsMerged() && r.match(pr) {
			r.started = true
			return
		}
	}
	if r.started {
		r.ended = true
	}
}

// Fetch scans merged pull requests into base. match decides whether a pull
// request belongs to the interval. Finding nothing is not an error.
func (f *CandidateFetcher) Fetch(ctx context.Context, owner, repo, base string, match func(model.PullRequest) bool) (*CandidateResult, error) {
	result := &CandidateResult{}
	tracker := &rangeTracker{match: match}
	opts := github.ListPullRequestsOptions{Base: base, PerPage: f.perPage}

	fetch := func(ctx context.Context, cursor string) (Page[model.PullRequest], error) {
		page, err := f.client.ListPullRequests(ctx, owner, repo, opts, cursor)
		if err != nil {
			return Page[model.PullRequest]{}, err
		}
		result.Fetched += page.Fetched
		return Page[model.PullRequest]{Items: page.PullRequests, Next: page.Next, Done: !page.HasNext}, nil
	}
	stop := func(_, batch []model.PullRequest) bool {
		tracker.observe(batch)
		return tracker.ended || result.Fetched >= f.maxFetch
	}

	pager := NewPager(fetch, stop)
	for pager.Next(ctx) {
		for _, pr := range pager.Batch() {
			if pr.IsMerged() && match(pr) {
				result.Matches = append(result.Matches, pr)
			}
		}
	}
	if err := pager.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pull requests of %s/%s into %s: %w", owner, repo, base, err)
	}

	result.Pages = pager.Pages()
	result.RangeStarted = tracker.started
	result.RangeEnded = tracker.ended
	if result.Fetched >= f.maxFetch && !tracker.ended {
		result.Warning = prerrors.NewRangeExhaustedWarning(result.Fetched, f.maxFetch)
	}
	return result, nil
}
