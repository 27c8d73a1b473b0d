package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/githubv4"

	"prsummary.dev/prsummary/internal/model"
)

// GraphQLClient implements the paged listings with the GitHub GraphQL API.
// Single lookups and mutations go through the embedded RESTClient.
type GraphQLClient struct {
	*RESTClient
	client *githubv4.Client
}

// NewGraphQLClient creates a GraphQLClient posting to endpoint
func NewGraphQLClient(httpClient *http.Client, endpoint string, rest *RESTClient) *GraphQLClient {
	return &GraphQLClient{
		RESTClient: rest,
		client:     githubv4.NewEnterpriseClient(endpoint, httpClient),
	}
}

// Flavor reports FlavorGraphQL
func (c *GraphQLClient) Flavor() Flavor {
	return FlavorGraphQL
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

type commitNode struct {
	Oid           githubv4.GitObjectID
	Message       string
	CommittedDate githubv4.DateTime
	Author        *struct {
		Name string
		User *struct {
			Login string
		}
	}
	Parents struct {
		Nodes []struct {
			Oid githubv4.GitObjectID
		}
	} `graphql:"parents(first: 10)"`
}

type pullRequestNode struct {
	Number      int
	Title       string
	Body        string
	URL         string
	State       githubv4.PullRequestState
	MergedAt    *githubv4.DateTime
	HeadRefName string
	HeadRefOid  githubv4.GitObjectID
	BaseRefName string
	MergeCommit *struct {
		Oid githubv4.GitObjectID
	}
	Author *struct {
		Login string
	}
}

// ListCommits pages through the commits of a pull request or the history of a
// ref using GraphQL cursors.
func (c *GraphQLClient) ListCommits(ctx context.Context, owner, repo string, opts ListCommitsOptions, cursor string) (CommitPage, error) {
	if opts.Scope.PullRequest != 0 {
		return c.listPullRequestCommits(ctx, owner, repo, opts, cursor)
	}
	return c.listRefHistory(ctx, owner, repo, opts, cursor)
}

func (c *GraphQLClient) listPullRequestCommits(ctx context.Context, owner, repo string, opts ListCommitsOptions, cursor string) (CommitPage, error) {
	var q struct {
		Repository struct {
			PullRequest *struct {
				HeadRefName string
				HeadRefOid  githubv4.GitObjectID
				BaseRefName string
				BaseRefOid  githubv4.GitObjectID
				Commits     struct {
					Nodes []struct {
						Commit commitNode
					}
					PageInfo pageInfo
				} `graphql:"commits(first: $perPage, after: $after)"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	number := opts.Scope.PullRequest
	name := fmt.Sprintf("%s/%s#%d", owner, repo, number)
	vars := map[string]interface{}{
		"owner":   githubv4.String(owner),
		"repo":    githubv4.String(repo),
		"number":  githubv4.Int(number),
		"perPage": githubv4.Int(perPage(opts.PerPage)),
		"after":   cursorVar(cursor),
	}
	if err := c.client.Query(ctx, &q, vars); err != nil {
		return CommitPage{}, classifyGraphQL("query pull request commits", "pull request", name, err)
	}

	pr := q.Repository.PullRequest
	if pr == nil {
		return CommitPage{}, classifyGraphQL("query pull request commits", "pull request", name, fmt.Errorf("Could not resolve to a PullRequest"))
	}

	page := CommitPage{}
	if cursor == "" {
		page.Head = &model.RefTip{Name: pr.HeadRefName, SHA: string(pr.HeadRefOid)}
		page.Base = &model.RefTip{Name: pr.BaseRefName, SHA: string(pr.BaseRefOid)}
	}
	for _, node := range pr.Commits.Nodes {
		page.Commits = append(page.Commits, node.Commit.toModel())
	}
	page.Next, page.HasNext = pr.Commits.PageInfo.next()
	return page, nil
}

func (c *GraphQLClient) listRefHistory(ctx context.Context, owner, repo string, opts ListCommitsOptions, cursor string) (CommitPage, error) {
	var q struct {
		Repository struct {
			Ref *struct {
				Target struct {
					Commit struct {
						Oid     githubv4.GitObjectID
						History struct {
							Nodes    []commitNode
							PageInfo pageInfo
						} `graphql:"history(first: $perPage, after: $after)"`
					} `graphql:"... on Commit"`
				}
			} `graphql:"ref(qualifiedName: $ref)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	name := fmt.Sprintf("%s/%s@%s", owner, repo, opts.Scope.Ref)
	vars := map[string]interface{}{
		"owner":   githubv4.String(owner),
		"repo":    githubv4.String(repo),
		"ref":     githubv4.String(opts.Scope.Ref),
		"perPage": githubv4.Int(perPage(opts.PerPage)),
		"after":   cursorVar(cursor),
	}
	if err := c.client.Query(ctx, &q, vars); err != nil {
		return CommitPage{}, classifyGraphQL("query ref history", "ref", name, err)
	}
	if q.Repository.Ref == nil {
		return CommitPage{}, classifyGraphQL("query ref history", "ref", name, fmt.Errorf("Could not resolve to a Ref"))
	}

	target := q.Repository.Ref.Target.Commit
	page := CommitPage{}
	if cursor == "" {
		page.Head = &model.RefTip{Name: opts.Scope.Ref, SHA: string(target.Oid)}
	}
	for _, node := range target.History.Nodes {
		page.Commits = append(page.Commits, node.toModel())
	}
	page.Next, page.HasNext = target.History.PageInfo.next()
	return page, nil
}

// ListPullRequests pages through merged pull requests into opts.Base, most
// recently updated first. GraphQL filters on MERGED server-side.
func (c *GraphQLClient) ListPullRequests(ctx context.Context, owner, repo string, opts ListPullRequestsOptions, cursor string) (PullRequestPage, error) {
	var q struct {
		Repository struct {
			PullRequests struct {
				Nodes    []pullRequestNode
				PageInfo pageInfo
			} `graphql:"pullRequests(first: $perPage, after: $after, baseRefName: $base, states: $states, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	vars := map[string]interface{}{
		"owner":   githubv4.String(owner),
		"repo":    githubv4.String(repo),
		"base":    githubv4.String(opts.Base),
		"perPage": githubv4.Int(perPage(opts.PerPage)),
		"after":   cursorVar(cursor),
		"states":  []githubv4.PullRequestState{githubv4.PullRequestStateMerged},
		"orderBy": githubv4.IssueOrder{
			Field:     githubv4.IssueOrderFieldUpdatedAt,
			Direction: githubv4.OrderDirectionDesc,
		},
	}
	if err := c.client.Query(ctx, &q, vars); err != nil {
		return PullRequestPage{}, classifyGraphQL("query pull requests", "repository", owner+"/"+repo, err)
	}

	nodes := q.Repository.PullRequests.Nodes
	page := PullRequestPage{Fetched: len(nodes)}
	for _, node := range nodes {
		pr := node.toModel()
		if !pr.IsMerged() {
			continue
		}
		page.PullRequests = append(page.PullRequests, pr)
	}
	page.Next, page.HasNext = q.Repository.PullRequests.PageInfo.next()
	return page, nil
}

func (p pageInfo) next() (string, bool) {
	if !p.HasNextPage || p.EndCursor == "" {
		return "", false
	}
	return string(p.EndCursor), true
}

// cursorVar encodes the after argument; the first page passes null.
func cursorVar(cursor string) *githubv4.String {
	if cursor == "" {
		return nil
	}
	return githubv4.NewString(githubv4.String(cursor))
}

func (n commitNode) toModel() model.Commit {
	commit := model.Commit{
		SHA:         string(n.Oid),
		Message:     n.Message,
		CommittedAt: n.CommittedDate.Time,
	}
	if n.Author != nil {
		commit.AuthorName = n.Author.Name
		if n.Author.User != nil {
			commit.AuthorLogin = n.Author.User.Login
		}
	}
	for _, parent := range n.Parents.Nodes {
		commit.Parents = append(commit.Parents, string(parent.Oid))
	}
	return commit
}

func (n pullRequestNode) toModel() model.PullRequest {
	var mergedAt *time.Time
	if n.MergedAt != nil {
		t := n.MergedAt.Time
		mergedAt = &t
	}

	pr := model.PullRequest{
		Number:   n.Number,
		Title:    n.Title,
		Body:     n.Body,
		HeadRef:  n.HeadRefName,
		HeadSHA:  string(n.HeadRefOid),
		MergedAt: mergedAt,
		State:    model.NormalizeState(string(n.State), mergedAt),
		BaseRef:  n.BaseRefName,
		HTMLURL:  n.URL,
	}
	if n.MergeCommit != nil {
		pr.MergeCommitSHA = string(n.MergeCommit.Oid)
	}
	if n.Author != nil {
		pr.AuthorLogin = n.Author.Login
	}
	return pr
}
