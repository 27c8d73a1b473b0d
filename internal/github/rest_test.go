package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	prerrors "prsummary.dev/prsummary/internal/errors"
	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/testhelpers"
)

func threeCommits() []testhelpers.SampleCommitData {
	return []testhelpers.SampleCommitData{
		{SHA: "c1", Parents: []string{"base"}, Login: "alice", Message: "First"},
		{SHA: "c2", Parents: []string{"c1"}, Name: "Bob Example", Message: "Second"},
		{SHA: "c3", Parents: []string{"c2"}, Login: "alice", Message: "Third"},
	}
}

func TestRESTClientListCommits(t *testing.T) {
	ctx := context.Background()

	t.Run("pull request scope pages and reports refs on the first page", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		data := testhelpers.DefaultPRData()
		data.Number = 7
		data.Base = "master"
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(data))
		cfg.PRCommits[7] = testhelpers.NewSampleCommits(threeCommits()...)
		cfg.PageSize = 2
		client := testhelpers.NewMockRESTClient(t, cfg)

		opts := github.ListCommitsOptions{Scope: github.PullRequestScope(7), PerPage: 2}
		first, err := client.ListCommits(ctx, "owner", "repo", opts, "")
		require.NoError(t, err)
		require.Len(t, first.Commits, 2)
		require.True(t, first.HasNext)
		require.Equal(t, "2", first.Next)
		require.Equal(t, &model.RefTip{Name: "feature-branch", SHA: "feature-sha"}, first.Head)
		require.Equal(t, "master", first.Base.Name)

		c1 := first.Commits[0]
		require.Equal(t, "c1", c1.SHA)
		require.Equal(t, "alice", c1.AuthorLogin)
		require.Equal(t, []string{"base"}, c1.Parents)
		require.Equal(t, "Bob Example", first.Commits[1].AuthorName)
		require.Empty(t, first.Commits[1].AuthorLogin)

		second, err := client.ListCommits(ctx, "owner", "repo", opts, first.Next)
		require.NoError(t, err)
		require.Len(t, second.Commits, 1)
		require.False(t, second.HasNext)
		require.Nil(t, second.Head)
	})

	t.Run("ref scope reports the tip as head", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.RefCommits["develop"] = testhelpers.NewSampleCommits(
			testhelpers.SampleCommitData{SHA: "tip", Parents: []string{"prev"}, Login: "a"},
			testhelpers.SampleCommitData{SHA: "prev", Login: "a"},
		)
		client := testhelpers.NewMockRESTClient(t, cfg)

		page, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "")
		require.NoError(t, err)
		require.Equal(t, &model.RefTip{Name: "develop", SHA: "tip"}, page.Head)
		require.Nil(t, page.Base)
		require.False(t, page.HasNext)
	})

	t.Run("unknown pull request is not found", func(t *testing.T) {
		client := testhelpers.NewMockRESTClient(t, testhelpers.NewMockGitHubServerConfig())
		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.PullRequestScope(9)}, "")
		require.ErrorIs(t, err, prerrors.ErrNotFound)

		var nf *prerrors.NotFoundError
		require.True(t, errors.As(err, &nf))
		require.Equal(t, "pull request", nf.Kind)
	})

	t.Run("server errors are transport failures", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.RefCommits["develop"] = testhelpers.NewSampleCommits(testhelpers.SampleCommitData{SHA: "tip"})
		cfg.ErrorResponses["GET /repos/owner/repo/commits"] = 500
		client := testhelpers.NewMockRESTClient(t, cfg)

		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "")
		require.ErrorIs(t, err, prerrors.ErrTransport)

		var te *prerrors.TransportError
		require.True(t, errors.As(err, &te))
		require.Equal(t, 500, te.Status)
	})

	t.Run("malformed cursor", func(t *testing.T) {
		client := testhelpers.NewMockRESTClient(t, testhelpers.NewMockGitHubServerConfig())
		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "abc")
		require.Error(t, err)
	})
}

func TestRESTClientListPullRequests(t *testing.T) {
	ctx := context.Background()

	cfg := testhelpers.NewMockGitHubServerConfig()
	merged := testhelpers.MergedPRData(3, "h3", "2017-01-08T12:00:00Z")
	merged.MergeCommitSHA = "m3"
	cfg.AddPullRequest(testhelpers.NewSamplePullRequest(merged))
	cfg.AddPullRequest(testhelpers.NewSamplePullRequest(testhelpers.ClosedPRData(2, "h2")))
	other := testhelpers.MergedPRData(1, "h1", "2017-01-07T12:00:00Z")
	other.Base = "master"
	cfg.AddPullRequest(testhelpers.NewSamplePullRequest(other))
	client := testhelpers.NewMockRESTClient(t, cfg)

	page, err := client.ListPullRequests(ctx, "owner", "repo", github.ListPullRequestsOptions{Base: "develop"}, "")
	require.NoError(t, err)
	require.Equal(t, 2, page.Fetched)
	require.Len(t, page.PullRequests, 1)

	pr := page.PullRequests[0]
	require.Equal(t, 3, pr.Number)
	require.Equal(t, model.StateMerged, pr.State)
	require.Equal(t, "m3", pr.MergeCommitSHA)
	require.Equal(t, "h3", pr.HeadSHA)
	require.Equal(t, "octocat", pr.AuthorLogin)
	require.Equal(t, "develop", pr.BaseRef)
	require.NotNil(t, pr.MergedAt)
}

func TestRESTClientPullRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(testhelpers.DefaultPRData()))
		client := testhelpers.NewMockRESTClient(t, cfg)

		pr, err := client.GetPullRequest(ctx, "owner", "repo", 123)
		require.NoError(t, err)
		require.Equal(t, "Test Pull Request", pr.Title)
		require.Equal(t, "https://github.com/owner/repo/pull/123", pr.HTMLURL)

		_, err = client.GetPullRequest(ctx, "owner", "repo", 124)
		require.ErrorIs(t, err, prerrors.ErrNotFound)
	})

	t.Run("find only matches open pull requests", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		open := testhelpers.DefaultPRData()
		open.Number = 10
		open.Head = "develop"
		open.Base = "master"
		open.MergedAt = ""
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(open))
		client := testhelpers.NewMockRESTClient(t, cfg)

		pr, err := client.FindPullRequest(ctx, "owner", "repo", "develop", "master")
		require.NoError(t, err)
		require.NotNil(t, pr)
		require.Equal(t, 10, pr.Number)
		require.Equal(t, model.StateOpen, pr.State)

		pr, err = client.FindPullRequest(ctx, "owner", "repo", "develop", "release")
		require.NoError(t, err)
		require.Nil(t, pr)
	})

	t.Run("create and update", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		client := testhelpers.NewMockRESTClient(t, cfg)

		created, err := client.CreatePullRequest(ctx, "owner", "repo", github.CreatePROptions{
			Title: "Release", Body: "notes", Head: "develop", Base: "master",
		})
		require.NoError(t, err)
		require.Len(t, cfg.CreatedPRs, 1)
		require.Equal(t, "develop", created.HeadRef)
		require.Equal(t, "notes", cfg.CreatedPRs[0].GetBody())

		body := "new notes"
		require.NoError(t, client.UpdatePullRequest(ctx, "owner", "repo", created.Number, github.UpdatePROptions{Body: &body}))
		require.Equal(t, "new notes", cfg.UpdatedPRs[created.Number].GetBody())
		require.Equal(t, "Release", cfg.UpdatedPRs[created.Number].GetTitle())
	})
}

func TestRESTClientCompareRefs(t *testing.T) {
	ctx := context.Background()

	cfg := testhelpers.NewMockGitHubServerConfig()
	cfg.RefCommits["develop"] = testhelpers.NewSampleCommits(testhelpers.SampleCommitData{SHA: "tip", Parents: []string{"base0"}})
	cfg.Comparisons["master...develop"] = testhelpers.NewSampleComparison("master-tip", "base0")
	client := testhelpers.NewMockRESTClient(t, cfg)

	cmp, err := client.CompareRefs(ctx, "owner", "repo", "master", "develop")
	require.NoError(t, err)
	require.Equal(t, &github.Comparison{
		Base:      model.RefTip{Name: "master", SHA: "master-tip"},
		Head:      model.RefTip{Name: "develop", SHA: "tip"},
		MergeBase: "base0",
	}, cmp)

	_, err = client.CompareRefs(ctx, "owner", "repo", "master", "nope")
	require.ErrorIs(t, err, prerrors.ErrNotFound)
}

func TestParseFlavor(t *testing.T) {
	for in, want := range map[string]github.Flavor{"": github.FlavorREST, "rest": github.FlavorREST, "graphql": github.FlavorGraphQL} {
		got, err := github.ParseFlavor(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := github.ParseFlavor("soap")
	require.Error(t, err)
}

func TestEndpointsFor(t *testing.T) {
	public, err := github.EndpointsFor("github.com")
	require.NoError(t, err)
	require.Equal(t, "https://api.github.com/", public.REST.String())
	require.Equal(t, "https://api.github.com/graphql", public.GraphQL)

	enterprise, err := github.EndpointsFor("github.example.com")
	require.NoError(t, err)
	require.Equal(t, "https://github.example.com/api/v3/", enterprise.REST.String())
	require.Equal(t, "https://github.example.com/api/uploads/", enterprise.Upload.String())
	require.Equal(t, "https://github.example.com/api/graphql", enterprise.GraphQL)
}
