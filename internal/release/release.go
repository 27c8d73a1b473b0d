// Package release keeps a release pull request's body in sync with the pull
// requests it ships.
//
// The release pull request goes from the integration branch (head) into the
// production branch (base). Prepare finds it, creating it when missing,
// resolves what it contains and rewrites its body.
package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/internal/output"
	"prsummary.dev/prsummary/internal/render"
	"prsummary.dev/prsummary/internal/resolver"
)

// DefaultTitleFormat receives the UTC date of the release
const DefaultTitleFormat = "Release %s"

// ErrAborted is returned when creating the release pull request was declined
var ErrAborted = errors.New("release aborted")

// ConfirmFunc asks the user a yes/no question
type ConfirmFunc func(prompt string) (bool, error)

// PrepareOptions selects the release pull request
type PrepareOptions struct {
	Owner  string
	Repo   string
	Base   string
	Head   string
	Title  string // used only when the pull request is created
	DryRun bool
}

// Result describes what Prepare found and did
type Result struct {
	// PullRequest is nil when none exists and DryRun was set
	PullRequest *model.PullRequest
	Summary     *model.Summary
	Body        string
	Diff        string
	Created     bool
	Updated     bool
}

// Publisher prepares release pull requests
type Publisher struct {
	client   github.Client
	resolver *resolver.Resolver
	renderer *render.Renderer
	splog    *output.Splog

	// Confirm gates pull request creation; nil means yes
	Confirm ConfirmFunc
	// Now supplies the release date for titles
	Now func() time.Time
	// TitleFormat defaults to DefaultTitleFormat
	TitleFormat string
}

// NewPublisher creates a Publisher
func NewPublisher(client github.Client, r *resolver.Resolver, renderer *render.Renderer, splog *output.Splog) *Publisher {
	return &Publisher{
		client:      client,
		resolver:    r,
		renderer:    renderer,
		splog:       splog,
		Now:         time.Now,
		TitleFormat: DefaultTitleFormat,
	}
}

// Prepare finds or creates the release pull request from opts.Head into
// opts.Base and rewrites its body with the rendered summary. With DryRun
// nothing is created or updated; Result.Diff shows the change that would be made.
func (p *Publisher) Prepare(ctx context.Context, opts PrepareOptions) (*Result, error) {
	pr, err := p.client.FindPullRequest(ctx, opts.Owner, opts.Repo, opts.Head, opts.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to find release pull request: %w", err)
	}

	result := &Result{PullRequest: pr}
	switch {
	case pr != nil:
		p.splog.Debug("Found release pull request #%d", pr.Number)
		result.Summary, err = p.resolver.ResolvePullRequest(ctx, opts.Owner, opts.Repo, pr.Number)

	case opts.DryRun:
		p.splog.Info("No open pull request from %s into %s; it would be created.", opts.Head, opts.Base)
		result.Summary, err = p.resolver.ResolveRange(ctx, resolver.RangeRequest{
			Owner: opts.Owner,
			Repo:  opts.Repo,
			Base:  opts.Base,
			Head:  opts.Head,
		}, p.resolver.RemoteWindow(opts.Owner, opts.Repo))

	default:
		pr, err = p.create(ctx, opts)
		if err != nil {
			return nil, err
		}
		result.PullRequest = pr
		result.Created = true
		result.Summary, err = p.resolver.ResolvePullRequest(ctx, opts.Owner, opts.Repo, pr.Number)
	}
	if err != nil {
		return nil, err
	}

	result.Body, err = p.renderer.Render(result.Summary)
	if err != nil {
		return nil, err
	}

	var current string
	if result.PullRequest != nil {
		current = result.PullRequest.Body
	}
	result.Diff = Diff(current, result.Body)

	if opts.DryRun || result.PullRequest == nil || result.Diff == "" {
		return result, nil
	}

	body := result.Body
	if err := p.client.UpdatePullRequest(ctx, opts.Owner, opts.Repo, result.PullRequest.Number, github.UpdatePROptions{Body: &body}); err != nil {
		return nil, fmt.Errorf("failed to update release pull request: %w", err)
	}
	result.Updated = true
	p.splog.Info("Updated #%d: %s", result.PullRequest.Number, result.PullRequest.HTMLURL)
	return result, nil
}

func (p *Publisher) create(ctx context.Context, opts PrepareOptions) (*model.PullRequest, error) {
	title := opts.Title
	if title == "" {
		format := p.TitleFormat
		if format == "" {
			format = DefaultTitleFormat
		}
		title = fmt.Sprintf(format, p.Now().UTC().Format("2006-01-02"))
	}

	if p.Confirm != nil {
		ok, err := p.Confirm(fmt.Sprintf("Create pull request %q from %s into %s?", title, opts.Head, opts.Base))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	pr, err := p.client.CreatePullRequest(ctx, opts.Owner, opts.Repo, github.CreatePROptions{
		Title: title,
		Head:  opts.Head,
		Base:  opts.Base,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release pull request: %w", err)
	}
	p.splog.Info("Created #%d: %s", pr.Number, pr.HTMLURL)
	return pr, nil
}

// Diff returns a unified diff from previous to current, empty when they are equal
func Diff(previous, current string) string {
	if previous == current {
		return ""
	}

	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: "current",
		ToFile:   "proposed",
		Context:  3,
	}
	res, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return current
	}
	return strings.TrimRight(res, "\n")
}
