package resolver

import (
	"regexp"
	"strconv"

	"prsummary.dev/prsummary/internal/model"
)

// Walk collects the ancestors of head that lie above mergeBase, restricted to
// the commits in known. Head itself and the merge base are never included.
// Parents missing from known are not fetched, so the caller must supply a
// window that reaches the merge base. An unknown head yields an empty set.
func Walk(head string, known *CommitSet, mergeBase string) *CommitSet {
	result := NewCommitSet()
	start, ok := known.Get(head)
	if !ok {
		return result
	}

	worklist := []model.Commit{start}
	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, sha := range current.Parents {
			if sha == mergeBase || sha == head || result.Contains(sha) {
				continue
			}
			parent, ok := known.Get(sha)
			if !ok {
				continue
			}
			result.Add(parent)
			worklist = append(worklist, parent)
		}
	}
	return result
}

var mergePullRequestPattern = regexp.MustCompile(`^Merge pull request #(\d+) from (.*)`)

// ExtractPullRequestNumbers returns the pull request numbers named by merge
// commit subjects, deduplicated in first-seen order.
func ExtractPullRequestNumbers(commits []model.Commit) []int {
	seen := make(map[int]bool)
	var numbers []int
	for _, c := range commits {
		m := mergePullRequestPattern.FindStringSubmatch(c.Subject())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	return numbers
}
