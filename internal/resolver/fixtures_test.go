package resolver

import (
	"io"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"

	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/internal/output"
	"prsummary.dev/prsummary/testhelpers"
)

func commit(sha, login string, parents ...string) model.Commit {
	return model.Commit{SHA: sha, AuthorLogin: login, Parents: parents, Message: "change " + sha}
}

func mergedPR(t *testing.T, number int, headSHA, mergeSHA, mergedAt string) model.PullRequest {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, mergedAt)
	require.NoError(t, err)
	return model.PullRequest{
		Number:         number,
		HeadSHA:        headSHA,
		MergeCommitSHA: mergeSHA,
		MergedAt:       &ts,
		State:          model.StateMerged,
		BaseRef:        "master",
	}
}

func numbers(prs []model.PullRequest) []int {
	out := make([]int, 0, len(prs))
	for _, pr := range prs {
		out = append(out, pr.Number)
	}
	return out
}

func quietSplog() *output.Splog {
	return output.NewSplogWithWriter(io.Discard, false)
}

// releaseScenario is a release pull request #3 (develop into master) with
// four commits by a, a, b, b. Pull requests #1 and #2 were merged into
// develop inside that range; #4 was closed unmerged and #99 is older.
func releaseScenario() *testhelpers.MockGitHubServerConfig {
	cfg := testhelpers.NewMockGitHubServerConfig()

	release := testhelpers.NewSamplePullRequest(testhelpers.SamplePRData{
		Number: 3, Title: "Release", Author: "releaser",
		Head: "develop", HeadSHA: "sha3", Base: "master",
	})
	release.Base.SHA = github.String("base0")
	cfg.PRs[3] = release

	cfg.PRCommits[3] = testhelpers.NewSampleCommits(
		testhelpers.SampleCommitData{SHA: "sha0", Parents: []string{"base0"}, Login: "a", Message: "first"},
		testhelpers.SampleCommitData{SHA: "sha1", Parents: []string{"sha0"}, Login: "a", Message: "second"},
		testhelpers.SampleCommitData{SHA: "sha2", Parents: []string{"sha1"}, Login: "b", Message: "third"},
		testhelpers.SampleCommitData{SHA: "sha3", Parents: []string{"sha2"}, Login: "b", Message: "fourth"},
	)

	pr2 := testhelpers.MergedPRData(2, "sha3", "2017-01-08T23:56:36+09:00")
	pr2.Base, pr2.MergeCommitSHA = "develop", "sha3"
	pr4 := testhelpers.ClosedPRData(4, "sha1")
	pr4.Base = "develop"
	pr1 := testhelpers.MergedPRData(1, "sha0", "2017-01-08T21:56:36+09:00")
	pr1.Base, pr1.MergeCommitSHA = "develop", "sha1"
	pr99 := testhelpers.MergedPRData(99, "old", "2016-12-01T10:00:00+09:00")
	pr99.Base, pr99.MergeCommitSHA = "develop", "old-merge"

	for _, data := range []testhelpers.SamplePRData{pr2, pr4, pr1, pr99} {
		cfg.AddPullRequest(testhelpers.NewSamplePullRequest(data))
	}
	cfg.PageSize = 2
	return cfg
}
