package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"

	"prsummary.dev/prsummary/internal/model"
)

// RESTClient implements Client using the GitHub REST API
type RESTClient struct {
	client *github.Client
}

// NewRESTClient creates a RESTClient sending authenticated requests to endpoints
func NewRESTClient(httpClient *http.Client, endpoints Endpoints) *RESTClient {
	client := github.NewClient(httpClient)
	client.BaseURL = endpoints.REST
	client.UploadURL = endpoints.Upload
	return &RESTClient{client: client}
}

// WrapRESTClient adapts an already configured go-github client
func WrapRESTClient(client *github.Client) *RESTClient {
	return &RESTClient{client: client}
}

// Flavor reports FlavorREST
func (c *RESTClient) Flavor() Flavor {
	return FlavorREST
}

// ListCommits returns one page of commits. For a pull request scope the first
// page also reports the head and base refs of the pull request.
func (c *RESTClient) ListCommits(ctx context.Context, owner, repo string, opts ListCommitsOptions, cursor string) (CommitPage, error) {
	pageNum, err := restPage(cursor)
	if err != nil {
		return CommitPage{}, err
	}
	listOpts := github.ListOptions{Page: pageNum, PerPage: perPage(opts.PerPage)}

	var (
		page    CommitPage
		commits []*github.RepositoryCommit
		resp    *github.Response
	)
	if opts.Scope.PullRequest != 0 {
		number := opts.Scope.PullRequest
		if cursor == "" {
			pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
			if err != nil {
				return CommitPage{}, classifyREST("get pull request", "pull request", fmt.Sprintf("%s/%s#%d", owner, repo, number), err)
			}
			page.Head = &model.RefTip{Name: pr.GetHead().GetRef(), SHA: pr.GetHead().GetSHA()}
			page.Base = &model.RefTip{Name: pr.GetBase().GetRef(), SHA: pr.GetBase().GetSHA()}
		}
		commits, resp, err = c.client.PullRequests.ListCommits(ctx, owner, repo, number, &listOpts)
		if err != nil {
			return CommitPage{}, classifyREST("list pull request commits", "pull request", fmt.Sprintf("%s/%s#%d", owner, repo, number), err)
		}
	} else {
		commits, resp, err = c.client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
			SHA:         opts.Scope.Ref,
			ListOptions: listOpts,
		})
		if err != nil {
			return CommitPage{}, classifyREST("list commits", "ref", fmt.Sprintf("%s/%s@%s", owner, repo, opts.Scope.Ref), err)
		}
		if cursor == "" && len(commits) > 0 {
			page.Head = &model.RefTip{Name: opts.Scope.Ref, SHA: commits[0].GetSHA()}
		}
	}

	page.Commits = make([]model.Commit, 0, len(commits))
	for _, rc := range commits {
		page.Commits = append(page.Commits, toCommit(rc))
	}
	page.Next, page.HasNext = nextCursor(resp)
	return page, nil
}

// ListPullRequests returns one page of merged pull requests into opts.Base,
// most recently updated first. The REST endpoint cannot filter on merged, so
// closed pull requests are listed and unmerged ones dropped here.
func (c *RESTClient) ListPullRequests(ctx context.Context, owner, repo string, opts ListPullRequestsOptions, cursor string) (PullRequestPage, error) {
	pageNum, err := restPage(cursor)
	if err != nil {
		return PullRequestPage{}, err
	}

	prs, resp, err := c.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:     "closed",
		Base:      opts.Base,
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			Page:    pageNum,
			PerPage: perPage(opts.PerPage),
		},
	})
	if err != nil {
		return PullRequestPage{}, classifyREST("list pull requests", "repository", owner+"/"+repo, err)
	}

	page := PullRequestPage{Fetched: len(prs)}
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		page.PullRequests = append(page.PullRequests, *toPullRequest(pr))
	}
	page.Next, page.HasNext = nextCursor(resp)
	return page, nil
}

// GetPullRequest gets a single pull request
func (c *RESTClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, classifyREST("get pull request", "pull request", fmt.Sprintf("%s/%s#%d", owner, repo, number), err)
	}
	return toPullRequest(pr), nil
}

// CompareRefs resolves base and head and finds their merge base
func (c *RESTClient) CompareRefs(ctx context.Context, owner, repo, base, head string) (*Comparison, error) {
	name := fmt.Sprintf("%s/%s %s...%s", owner, repo, base, head)
	cmp, _, err := c.client.Repositories.CompareCommits(ctx, owner, repo, base, head, &github.ListOptions{PerPage: 1})
	if err != nil {
		return nil, classifyREST("compare refs", "ref", name, err)
	}

	headSHA, _, err := c.client.Repositories.GetCommitSHA1(ctx, owner, repo, head, "")
	if err != nil {
		return nil, classifyREST("resolve ref", "ref", fmt.Sprintf("%s/%s@%s", owner, repo, head), err)
	}

	return &Comparison{
		Base:      model.RefTip{Name: base, SHA: cmp.GetBaseCommit().GetSHA()},
		Head:      model.RefTip{Name: head, SHA: headSHA},
		MergeBase: cmp.GetMergeBaseCommit().GetSHA(),
	}, nil
}

// FindPullRequest returns the open pull request from head into base, if any
func (c *RESTClient) FindPullRequest(ctx context.Context, owner, repo, head, base string) (*model.PullRequest, error) {
	prs, _, err := c.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", owner, head),
		Base:  base,
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		return nil, classifyREST("list pull requests", "repository", owner+"/"+repo, err)
	}

	if len(prs) == 0 {
		return nil, nil
	}

	return toPullRequest(prs[0]), nil
}

// CreatePullRequest creates a new pull request
func (c *RESTClient) CreatePullRequest(ctx context.Context, owner, repo string, opts CreatePROptions) (*model.PullRequest, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}

	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	createdPR, _, err := c.client.PullRequests.Create(ctx, owner, repo, pr)
	if err != nil {
		return nil, classifyREST("create pull request", "repository", owner+"/"+repo, err)
	}

	return toPullRequest(createdPR), nil
}

// UpdatePullRequest updates the title and/or body of a pull request
func (c *RESTClient) UpdatePullRequest(ctx context.Context, owner, repo string, number int, opts UpdatePROptions) error {
	update := &github.PullRequest{}

	if opts.Title != nil {
		update.Title = opts.Title
	}
	if opts.Body != nil {
		update.Body = opts.Body
	}

	_, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, update)
	if err != nil {
		return classifyREST("update pull request", "pull request", fmt.Sprintf("%s/%s#%d", owner, repo, number), err)
	}
	return nil
}

// restPage converts a cursor into a REST page number. The empty cursor is the first page.
func restPage(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page cursor %q", cursor)
	}
	return n, nil
}

func nextCursor(resp *github.Response) (string, bool) {
	if resp == nil || resp.NextPage == 0 {
		return "", false
	}
	return strconv.Itoa(resp.NextPage), true
}

func perPage(n int) int {
	if n <= 0 || n > DefaultPerPage {
		return DefaultPerPage
	}
	return n
}

// toCommit converts a go-github commit into a model.Commit
func toCommit(rc *github.RepositoryCommit) model.Commit {
	commit := model.Commit{
		SHA:         rc.GetSHA(),
		AuthorLogin: rc.GetAuthor().GetLogin(),
		AuthorName:  rc.GetCommit().GetAuthor().GetName(),
		Message:     rc.GetCommit().GetMessage(),
		CommittedAt: rc.GetCommit().GetCommitter().GetDate().Time,
	}
	for _, parent := range rc.Parents {
		commit.Parents = append(commit.Parents, parent.GetSHA())
	}
	return commit
}

// toPullRequest converts a go-github pull request into a model.PullRequest
func toPullRequest(pr *github.PullRequest) *model.PullRequest {
	if pr == nil {
		return nil
	}

	var mergedAt *time.Time
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		mergedAt = &t
	}

	return &model.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.GetBody(),
		AuthorLogin:    pr.GetUser().GetLogin(),
		HeadRef:        pr.GetHead().GetRef(),
		HeadSHA:        pr.GetHead().GetSHA(),
		MergeCommitSHA: pr.GetMergeCommitSHA(),
		MergedAt:       mergedAt,
		State:          model.NormalizeState(pr.GetState(), mergedAt),
		BaseRef:        pr.GetBase().GetRef(),
		HTMLURL:        pr.GetHTMLURL(),
	}
}
