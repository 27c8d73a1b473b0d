package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	prerrors "prsummary.dev/prsummary/internal/errors"
	"prsummary.dev/prsummary/internal/model"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// Open opens the git repository containing path
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       absPath,
	}, nil
}

// FromRepository wraps an already opened go-git repository, such as one
// backed by in-memory storage.
func FromRepository(repo *git.Repository) *Repository {
	return &Repository{Repository: repo}
}

// Path returns the directory the repository was opened from, empty when not on disk
func (r *Repository) Path() string {
	return r.path
}

// ResolveRef resolves a branch name, remote branch, tag, ref path or SHA
func (r *Repository) ResolveRef(ref string) (plumbing.Hash, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.ReferenceName(ref),
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewRemoteReferenceName("origin", ref),
		plumbing.NewTagReferenceName(ref),
	}
	for _, name := range candidates {
		if ref, err := r.Reference(name, true); err == nil {
			return ref.Hash(), nil
		}
	}

	// SHAs, short SHAs and expressions like HEAD~1
	hash, err := r.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	return plumbing.ZeroHash, prerrors.NewNotFoundError("ref", ref, err)
}

// MergeBase returns the best common ancestor of two commits
func (r *Repository) MergeBase(a, b plumbing.Hash) (plumbing.Hash, error) {
	commitA, err := r.CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get commit %s: %w", a, err)
	}
	commitB, err := r.CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get commit %s: %w", b, err)
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, fmt.Errorf("no merge base between %s and %s", a, b)
	}
	return bases[0].Hash, nil
}

// toCommit converts a go-git commit. Local history carries no platform
// logins, so contributors fall back to the author name.
func toCommit(c *object.Commit) model.Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return model.Commit{
		SHA:         c.Hash.String(),
		Parents:     parents,
		AuthorName:  c.Author.Name,
		Message:     c.Message,
		CommittedAt: c.Committer.When,
	}
}
