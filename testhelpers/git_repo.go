package testhelpers

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

// GitRepo builds commit graphs in a git repository for tests.
// Every commit has an empty tree; only history matters.
type GitRepo struct {
	Repo *git.Repository

	t        testing.TB
	tree     plumbing.Hash
	clock    time.Time
	branches map[string]plumbing.Hash
}

// NewGitRepo initializes an empty in-memory repository.
func NewGitRepo(t testing.TB) *GitRepo {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	return newGitRepo(t, repo)
}

// NewGitRepoAt initializes a repository on disk in dir, for code that opens
// clones by path.
func NewGitRepoAt(t testing.TB, dir string) *GitRepo {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return newGitRepo(t, repo)
}

func newGitRepo(t testing.TB, repo *git.Repository) *GitRepo {
	t.Helper()

	obj := repo.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj))
	tree, err := repo.Storer.SetEncodedObject(obj)
	require.NoError(t, err)

	return &GitRepo{
		Repo:     repo,
		t:        t,
		tree:     tree,
		clock:    time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		branches: make(map[string]plumbing.Hash),
	}
}

// Commit writes a commit with the given parents and returns its hash. Commit
// times increase monotonically in call order.
func (r *GitRepo) Commit(author, message string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	r.clock = r.clock.Add(time.Minute)
	sig := object.Signature{Name: author, Email: author + "@example.com", When: r.clock}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     r.tree,
		ParentHashes: parents,
	}

	obj := r.Repo.Storer.NewEncodedObject()
	require.NoError(r.t, commit.Encode(obj))
	hash, err := r.Repo.Storer.SetEncodedObject(obj)
	require.NoError(r.t, err)
	return hash
}

// CommitOn commits onto the tip of branch and advances it. A branch that
// does not exist yet starts a new root.
func (r *GitRepo) CommitOn(branch, author, message string) plumbing.Hash {
	r.t.Helper()

	var parents []plumbing.Hash
	if tip, ok := r.branches[branch]; ok {
		parents = append(parents, tip)
	}
	hash := r.Commit(author, message, parents...)
	r.SetBranch(branch, hash)
	return hash
}

// Merge records a merge of from into the tip of into and advances into.
func (r *GitRepo) Merge(into, from, author, message string) plumbing.Hash {
	r.t.Helper()

	hash := r.Commit(author, message, r.branches[into], r.branches[from])
	r.SetBranch(into, hash)
	return hash
}

// SetBranch points refs/heads/name at hash.
func (r *GitRepo) SetBranch(name string, hash plumbing.Hash) {
	r.t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
	r.branches[name] = hash
}

// CreateBranch starts name at the current tip of from.
func (r *GitRepo) CreateBranch(name, from string) {
	r.t.Helper()
	r.SetBranch(name, r.branches[from])
}

// Tip returns the current tip of a branch.
func (r *GitRepo) Tip(branch string) plumbing.Hash {
	return r.branches[branch]
}

// AddRemote configures a remote with a single URL.
func (r *GitRepo) AddRemote(name, url string) {
	r.t.Helper()

	_, err := r.Repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	require.NoError(r.t, err)
}
