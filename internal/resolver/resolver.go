// Package resolver finds the pull requests merged within a release interval
// and the contributors behind them.
//
// Two flows are supported. ResolvePullRequest starts from a release pull
// request, lists its commits and correlates them against the pull requests
// merged into its head branch. ResolveRange starts from a base and head ref, walks the
// commit graph from head down to the merge base and looks up the pull requests
// named by the merge commits it finds.
package resolver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/internal/output"
)

// Options tune how much of the forge a resolution reads
type Options struct {
	// PerPage is the page size of every listing
	PerPage int
	// MaxFetchPRs bounds the merged pull request scan
	MaxFetchPRs int
	// MaxCommitPages bounds commit listings
	MaxCommitPages int
	// LookupConcurrency bounds parallel pull request lookups
	LookupConcurrency int
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		PerPage:           github.DefaultPerPage,
		MaxFetchPRs:       DefaultMaxFetchPRs,
		MaxCommitPages:    50,
		LookupConcurrency: 4,
	}
}

// WindowSource supplies the commits between a base and a head ref
type WindowSource interface {
	Window(ctx context.Context, base, head string) (*model.CommitWindow, error)
}

// RangeRequest describes a range resolution
type RangeRequest struct {
	Owner string
	Repo  string
	Base  string
	Head  string
	// Self is the release pull request, excluded from the result. Zero when there is none.
	Self int
}

// Resolver resolves release intervals against one forge client. Each call
// owns its own commit sets and cursors, so a Resolver may be shared.
type Resolver struct {
	client github.Client
	opts   Options
	splog  *output.Splog
}

// New creates a Resolver. Zero fields in opts take their defaults.
func New(client github.Client, opts Options, splog *output.Splog) *Resolver {
	defaults := DefaultOptions()
	if opts.PerPage <= 0 {
		opts.PerPage = defaults.PerPage
	}
	if opts.MaxFetchPRs <= 0 {
		opts.MaxFetchPRs = defaults.MaxFetchPRs
	}
	if opts.MaxCommitPages <= 0 {
		opts.MaxCommitPages = defaults.MaxCommitPages
	}
	if opts.LookupConcurrency <= 0 {
		opts.LookupConcurrency = defaults.LookupConcurrency
	}
	return &Resolver{client: client, opts: opts, splog: splog}
}

// ResolvePullRequest summarizes the release pull request numbered number:
// every pull request merged into its head branch whose key commit is among
// its commits, excluding itself. Pull requests into the release base already
// sit below the merge base and cannot match.
func (r *Resolver) ResolvePullRequest(ctx context.Context, owner, repo string, number int) (*model.Summary, error) {
	builder := NewCommitSetBuilder(r.client, r.opts.PerPage, r.opts.MaxCommitPages)
	built, err := builder.Build(ctx, owner, repo, github.PullRequestScope(number), nil)
	if err != nil {
		return nil, err
	}
	if built.Head == nil || built.Base == nil {
		return nil, fmt.Errorf("pull request %s/%s#%d reported no head or base ref", owner, repo, number)
	}
	r.splog.Debug("Listed %d commits of #%d in %d pages", built.Set.Len(), number, built.Pages)

	summary := &model.Summary{
		Interval: model.ReleaseInterval{
			Owner:        owner,
			Repo:         repo,
			BaseRef:      built.Base.Name,
			HeadRef:      built.Head.Name,
			HeadSHA:      built.Head.SHA,
			MergeBaseSHA: built.Base.SHA,
		},
		Commits: built.Set.Commits(),
	}
	if built.Truncated {
		summary.Warnings = append(summary.Warnings, fmt.Errorf("commit listing of #%d stopped after %d pages", number, built.Pages))
	}

	key := KeyForFlavor(r.client.Flavor())
	fetcher := NewCandidateFetcher(r.client, r.opts.PerPage, r.opts.MaxFetchPRs)
	candidates, err := fetcher.Fetch(ctx, owner, repo, built.Head.Name, func(pr model.PullRequest) bool {
		return pr.Number != number && built.Set.Contains(key(pr))
	})
	if err != nil {
		return nil, err
	}
	r.splog.Debug("Scanned %d pull requests into %s in %d pages (range started: %t, ended: %t)",
		candidates.Fetched, built.Head.Name, candidates.Pages, candidates.RangeStarted, candidates.RangeEnded)
	if candidates.Warning != nil {
		summary.Warnings = append(summary.Warnings, candidates.Warning)
	}

	summary.PullRequests = Correlate(candidates.Matches, built.Set, number, key)
	summary.Contributors = r.contributors(summary.Commits)
	return summary, nil
}

// ResolveRange summarizes the pull requests merged between req.Base and
// req.Head. The interval is the head commit plus every ancestor above the
// merge base; pull requests are found through their merge commit subjects.
// Commits are listed oldest first, as ResolvePullRequest lists them.
func (r *Resolver) ResolveRange(ctx context.Context, req RangeRequest, source WindowSource) (*model.Summary, error) {
	window, err := source.Window(ctx, req.Base, req.Head)
	if err != nil {
		return nil, err
	}

	summary := &model.Summary{
		Interval: model.ReleaseInterval{
			Owner:        req.Owner,
			Repo:         req.Repo,
			BaseRef:      req.Base,
			HeadRef:      req.Head,
			HeadSHA:      window.Head.SHA,
			MergeBaseSHA: window.MergeBase,
		},
		Commits:      []model.Commit{},
		Contributors: []string{},
		PullRequests: []model.PullRequest{},
	}
	if window.Truncated {
		summary.Warnings = append(summary.Warnings, fmt.Errorf("commit window of %s stopped before reaching merge base %s", req.Head, window.MergeBase))
	}

	known := NewCommitSet(window.Commits...)
	interval := NewCommitSet()
	if head, ok := known.Get(window.Head.SHA); ok && head.SHA != window.MergeBase {
		interval.Add(head)
		interval.Add(Walk(head.SHA, known, window.MergeBase).Commits()...)
	}
	if interval.Len() == 0 {
		r.splog.Debug("No commits between %s and %s", req.Base, req.Head)
		return summary, nil
	}

	// oldest first, the order pull request commit listings use
	for i := len(window.Commits) - 1; i >= 0; i-- {
		if c := window.Commits[i]; interval.Contains(c.SHA) {
			summary.Commits = append(summary.Commits, c)
		}
	}

	numbers := ExtractPullRequestNumbers(summary.Commits)
	r.splog.Debug("Walked %d commits naming %d pull requests", interval.Len(), len(numbers))

	candidates, err := r.lookupPullRequests(ctx, req.Owner, req.Repo, numbers)
	if err != nil {
		return nil, err
	}

	summary.PullRequests = Correlate(candidates, interval, req.Self, ByMergeCommit)
	summary.Contributors = r.contributors(summary.Commits)
	return summary, nil
}

// lookupPullRequests fetches pull requests concurrently. Any failure fails the batch.
func (r *Resolver) lookupPullRequests(ctx context.Context, owner, repo string, numbers []int) ([]model.PullRequest, error) {
	results := make([]model.PullRequest, len(numbers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.LookupConcurrency)
	for i, number := range numbers {
		g.Go(func() error {
			pr, err := r.client.GetPullRequest(gctx, owner, repo, number)
			if err != nil {
				return err
			}
			results[i] = *pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to look up pull requests: %w", err)
	}
	return results, nil
}

func (r *Resolver) contributors(commits []model.Commit) []string {
	names, skipped := Contributors(commits)
	for _, err := range skipped {
		r.splog.Debug("Skipping contributor: %v", err)
	}
	return names
}

// RemoteWindow reads a commit window from the forge: the merge base comes from
// a compare and the commits from the head ref history, listed until the merge
// base shows up.
type RemoteWindow struct {
	client   github.Client
	owner    string
	repo     string
	perPage  int
	maxPages int
}

// RemoteWindow returns a WindowSource reading owner/repo through the resolver's client
func (r *Resolver) RemoteWindow(owner, repo string) *RemoteWindow {
	return &RemoteWindow{
		client:   r.client,
		owner:    owner,
		repo:     repo,
		perPage:  r.opts.PerPage,
		maxPages: r.opts.MaxCommitPages,
	}
}

// Window implements WindowSource
func (w *RemoteWindow) Window(ctx context.Context, base, head string) (*model.CommitWindow, error) {
	cmp, err := w.client.CompareRefs(ctx, w.owner, w.repo, base, head)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s: %w", base, head, err)
	}

	window := &model.CommitWindow{Head: cmp.Head, Base: cmp.Base, MergeBase: cmp.MergeBase}
	if cmp.Head.SHA == cmp.MergeBase {
		return window, nil
	}

	reached := false
	builder := NewCommitSetBuilder(w.client, w.perPage, w.maxPages)
	built, err := builder.Build(ctx, w.owner, w.repo, github.RefScope(head), func(batch []model.Commit) bool {
		for _, c := range batch {
			if c.SHA == cmp.MergeBase {
				reached = true
			}
		}
		return reached
	})
	if err != nil {
		return nil, err
	}

	window.Commits = built.Set.Commits()
	window.Truncated = built.Truncated && !reached
	return window, nil
}
