package resolver

import (
	"sort"
	"time"

	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/model"
)

// MatchKey picks the commit of a pull request that is looked up in a commit set
type MatchKey func(model.PullRequest) string

// ByHeadSHA matches on the last commit of the pull request branch
func ByHeadSHA(pr model.PullRequest) string {
	return pr.HeadSHA
}

// ByMergeCommit matches on the commit that merged the pull request
func ByMergeCommit(pr model.PullRequest) string {
	return pr.MergeCommitSHA
}

// KeyForFlavor returns the match key a transport flavor reports reliably
func KeyForFlavor(flavor github.Flavor) MatchKey {
	if flavor == github.FlavorGraphQL {
		return ByMergeCommit
	}
	return ByHeadSHA
}

// Correlate keeps the merged candidates whose key commit is in commits,
// drops the pull request numbered self and orders the rest by merge time,
// then by number. The result is never nil.
func Correlate(candidates []model.PullRequest, commits *CommitSet, self int, key MatchKey) []model.PullRequest {
	seen := make(map[int]bool)
	out := make([]model.PullRequest, 0)
	for _, pr := range candidates {
		if !pr.IsMerged() || pr.Number == self || seen[pr.Number] {
			continue
		}
		if !commits.Contains(key(pr)) {
			continue
		}
		seen[pr.Number] = true
		out = append(out, pr)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := mergedAt(out[i]), mergedAt(out[j])
		if a.Equal(b) {
			return out[i].Number < out[j].Number
		}
		return a.Before(b)
	})
	return out
}

func mergedAt(pr model.PullRequest) time.Time {
	if pr.MergedAt == nil {
		return time.Time{}
	}
	return *pr.MergedAt
}
