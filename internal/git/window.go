package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"prsummary.dev/prsummary/internal/model"
)

// DefaultMaxCommits bounds a local commit window
const DefaultMaxCommits = 5000

// Window reads commit windows from a local clone
type Window struct {
	repo       *Repository
	maxCommits int
}

// NewWindow returns a window source over repo reading at most maxCommits
// commits (DefaultMaxCommits when zero).
func NewWindow(repo *Repository, maxCommits int) *Window {
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}
	return &Window{repo: repo, maxCommits: maxCommits}
}

// Window lists commits reachable from head, newest first, until the merge
// base of base and head has been read.
func (w *Window) Window(ctx context.Context, base, head string) (*model.CommitWindow, error) {
	baseHash, err := w.repo.ResolveRef(base)
	if err != nil {
		return nil, err
	}
	headHash, err := w.repo.ResolveRef(head)
	if err != nil {
		return nil, err
	}
	mergeBase, err := w.repo.MergeBase(baseHash, headHash)
	if err != nil {
		return nil, err
	}

	window := &model.CommitWindow{
		Head:      model.RefTip{Name: head, SHA: headHash.String()},
		Base:      model.RefTip{Name: base, SHA: baseHash.String()},
		MergeBase: mergeBase.String(),
	}
	if headHash == mergeBase {
		return window, nil
	}

	iter, err := w.repo.Log(&git.LogOptions{From: headHash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %s: %w", head, err)
	}
	defer iter.Close()

	reached := false
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(window.Commits) >= w.maxCommits {
			window.Truncated = true
			return storer.ErrStop
		}
		window.Commits = append(window.Commits, toCommit(c))
		if c.Hash == mergeBase {
			reached = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("failed to read log of %s: %w", head, err)
	}
	if !reached && !window.Truncated {
		return nil, fmt.Errorf("history of %s does not reach merge base %s", head, mergeBase)
	}
	return window, nil
}
