package github_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	prerrors "prsummary.dev/prsummary/internal/errors"
	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/testhelpers"
)

func TestGraphQLClientListCommits(t *testing.T) {
	ctx := context.Background()

	t.Run("pull request commits follow cursors", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		data := testhelpers.DefaultPRData()
		data.Number = 7
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(data))
		cfg.PRCommits[7] = testhelpers.NewSampleCommits(threeCommits()...)
		cfg.PageSize = 2
		client := testhelpers.NewMockGraphQLClient(t, cfg)
		require.Equal(t, github.FlavorGraphQL, client.Flavor())

		opts := github.ListCommitsOptions{Scope: github.PullRequestScope(7), PerPage: 2}
		first, err := client.ListCommits(ctx, "owner", "repo", opts, "")
		require.NoError(t, err)
		require.Len(t, first.Commits, 2)
		require.True(t, first.HasNext)
		require.Equal(t, &model.RefTip{Name: "feature-branch", SHA: "feature-sha"}, first.Head)
		require.Equal(t, "develop", first.Base.Name)

		require.Equal(t, "alice", first.Commits[0].AuthorLogin)
		require.Equal(t, []string{"base"}, first.Commits[0].Parents)
		require.Equal(t, "Bob Example", first.Commits[1].AuthorName)
		require.Empty(t, first.Commits[1].AuthorLogin)

		second, err := client.ListCommits(ctx, "owner", "repo", opts, first.Next)
		require.NoError(t, err)
		require.Len(t, second.Commits, 1)
		require.Equal(t, "c3", second.Commits[0].SHA)
		require.False(t, second.HasNext)
	})

	t.Run("ref history", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.RefCommits["develop"] = testhelpers.NewSampleCommits(
			testhelpers.SampleCommitData{SHA: "tip", Parents: []string{"prev"}, Login: "a"},
			testhelpers.SampleCommitData{SHA: "prev", Login: "a"},
		)
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		page, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "")
		require.NoError(t, err)
		require.Equal(t, &model.RefTip{Name: "develop", SHA: "tip"}, page.Head)
		require.Len(t, page.Commits, 2)
	})

	t.Run("missing objects are not found", func(t *testing.T) {
		client := testhelpers.NewMockGraphQLClient(t, testhelpers.NewMockGitHubServerConfig())

		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.PullRequestScope(9)}, "")
		require.ErrorIs(t, err, prerrors.ErrNotFound)

		_, err = client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("nope")}, "")
		require.ErrorIs(t, err, prerrors.ErrNotFound)
	})

	t.Run("other errors are transport failures", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.GraphQL = func(string, map[string]interface{}) (interface{}, []string) {
			return nil, []string{"API rate limit exceeded"}
		}
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "")
		require.ErrorIs(t, err, prerrors.ErrTransport)
	})

	t.Run("http failures are transport failures", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.ErrorResponses["POST /graphql"] = 502
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		_, err := client.ListCommits(ctx, "owner", "repo", github.ListCommitsOptions{Scope: github.RefScope("develop")}, "")
		require.ErrorIs(t, err, prerrors.ErrTransport)
	})
}

func TestGraphQLClientListPullRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("asks for merged pull requests by update time", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		var vars map[string]interface{}
		cfg.GraphQL = func(_ string, v map[string]interface{}) (interface{}, []string) {
			vars = v
			return map[string]interface{}{
				"repository": map[string]interface{}{
					"pullRequests": map[string]interface{}{
						"nodes":    []interface{}{},
						"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
					},
				},
			}, nil
		}
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		page, err := client.ListPullRequests(ctx, "owner", "repo", github.ListPullRequestsOptions{Base: "master", PerPage: 50}, "")
		require.NoError(t, err)
		require.Empty(t, page.PullRequests)
		require.False(t, page.HasNext)

		require.Equal(t, "master", vars["base"])
		require.Equal(t, []interface{}{"MERGED"}, vars["states"])
		require.Equal(t, map[string]interface{}{"field": "UPDATED_AT", "direction": "DESC"}, vars["orderBy"])
		require.Nil(t, vars["after"])
		require.EqualValues(t, 50, vars["perPage"])
	})

	t.Run("maps nodes", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		data := testhelpers.MergedPRData(4, "h4", "2017-01-08T12:00:00Z")
		data.MergeCommitSHA = "m4"
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(data))
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(testhelpers.ClosedPRData(3, "h3")))
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		page, err := client.ListPullRequests(ctx, "owner", "repo", github.ListPullRequestsOptions{Base: "develop"}, "")
		require.NoError(t, err)
		require.Equal(t, 1, page.Fetched)
		require.Len(t, page.PullRequests, 1)

		pr := page.PullRequests[0]
		require.Equal(t, 4, pr.Number)
		require.Equal(t, model.StateMerged, pr.State)
		require.Equal(t, "m4", pr.MergeCommitSHA)
		require.Equal(t, "h4", pr.HeadSHA)
		require.Equal(t, "octocat", pr.AuthorLogin)
		require.Equal(t, "https://github.com/owner/repo/pull/4", pr.HTMLURL)
	})

	t.Run("lookups go through REST", func(t *testing.T) {
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(testhelpers.DefaultPRData()))
		client := testhelpers.NewMockGraphQLClient(t, cfg)

		pr, err := client.GetPullRequest(ctx, "owner", "repo", 123)
		require.NoError(t, err)
		require.Equal(t, 123, pr.Number)
		require.Zero(t, cfg.Requests("POST /graphql"))
	})
}
