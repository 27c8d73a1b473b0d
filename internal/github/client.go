// Package github is the forge transport used by the resolver. It exposes paged
// listing of commits and pull requests, single pull request lookups and the
// create/update calls used when publishing a release note.
//
// Two implementations are provided: RESTClient on top of go-github and
// GraphQLClient on top of githubv4. Both return model types so callers never
// touch either library directly.
package github

import (
	"context"
	"fmt"

	"prsummary.dev/prsummary/internal/model"
)

// Flavor identifies which API family a Client speaks. It decides which commit
// identifier of a pull request is matched against a commit set: REST reports
// the head SHA reliably, GraphQL reports the merge commit.
type Flavor string

const (
	FlavorREST    Flavor = "rest"
	FlavorGraphQL Flavor = "graphql"
)

// ParseFlavor validates a configured API flavor.
func ParseFlavor(s string) (Flavor, error) {
	switch Flavor(s) {
	case "", FlavorREST:
		return FlavorREST, nil
	case FlavorGraphQL:
		return FlavorGraphQL, nil
	default:
		return "", fmt.Errorf("unknown api %q (want rest or graphql)", s)
	}
}

// CommitScope selects which commits ListCommits enumerates.
// Exactly one of PullRequest and Ref is set.
type CommitScope struct {
	PullRequest int
	Ref         string
}

// PullRequestScope lists all commits of a pull request.
func PullRequestScope(number int) CommitScope {
	return CommitScope{PullRequest: number}
}

// RefScope lists commits reachable from ref, newest first.
func RefScope(ref string) CommitScope {
	return CommitScope{Ref: ref}
}

// ListCommitsOptions selects and sizes a commit listing.
type ListCommitsOptions struct {
	Scope   CommitScope
	PerPage int
}

func (s CommitScope) String() string {
	if s.PullRequest != 0 {
		return fmt.Sprintf("#%d", s.PullRequest)
	}
	return s.Ref
}

// CommitPage is one page of a commit listing.
type CommitPage struct {
	Commits []model.Commit
	// Head and Base are filled on the first page only. For a ref scope Base is nil.
	Head *model.RefTip
	Base *model.RefTip
	// Next is the cursor for the following page; meaningful only when HasNext.
	Next    string
	HasNext bool
}

// DefaultPerPage is the largest page size GitHub serves.
const DefaultPerPage = 100

// ListPullRequestsOptions filters a pull request listing. The listing is always
// ordered by update time, most recent first.
type ListPullRequestsOptions struct {
	Base    string
	PerPage int
}

// PullRequestPage is one page of a pull request listing. Only merged pull
// requests are returned; endpoints that cannot filter server-side are filtered
// client-side, so a page may be shorter than requested.
type PullRequestPage struct {
	PullRequests []model.PullRequest
	// Fetched is the number of items the forge returned before filtering.
	Fetched int
	Next    string
	HasNext bool
}

// Comparison is the result of comparing two refs.
type Comparison struct {
	Base      model.RefTip
	Head      model.RefTip
	MergeBase string
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// UpdatePROptions contains options for updating a pull request
type UpdatePROptions struct {
	Title *string
	Body  *string
}

// Client is an interface for GitHub API interactions
type Client interface {
	// ListCommits returns one page of the commits in scope
	ListCommits(ctx context.Context, owner, repo string, opts ListCommitsOptions, cursor string) (CommitPage, error)

	// ListPullRequests returns one page of merged pull requests against opts.Base
	ListPullRequests(ctx context.Context, owner, repo string, opts ListPullRequestsOptions, cursor string) (PullRequestPage, error)

	// GetPullRequest gets a single pull request by number
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)

	// CompareRefs resolves both refs and their merge base
	CompareRefs(ctx context.Context, owner, repo, base, head string) (*Comparison, error)

	// FindPullRequest returns the open pull request from head into base, or nil
	FindPullRequest(ctx context.Context, owner, repo, head, base string) (*model.PullRequest, error)

	// CreatePullRequest creates a new pull request
	CreatePullRequest(ctx context.Context, owner, repo string, opts CreatePROptions) (*model.PullRequest, error)

	// UpdatePullRequest updates an existing pull request
	UpdatePullRequest(ctx context.Context, owner, repo string, number int, opts UpdatePROptions) error

	// Flavor reports the API family
	Flavor() Flavor
}
