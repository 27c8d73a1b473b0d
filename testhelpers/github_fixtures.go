package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
)

// SampleCommitData provides commit data for testing
type SampleCommitData struct {
	SHA     string
	Parents []string
	Login   string
	Name    string
	Message string
	Date    string // RFC 3339, defaults to DefaultCommitDate
}

// DefaultCommitDate is the committer date used when SampleCommitData.Date is empty
const DefaultCommitDate = "2017-01-08T12:00:00Z"

// SamplePRData provides pull request data for testing
type SamplePRData struct {
	Number         int
	Title          string
	Body           string
	Author         string
	Head           string
	HeadSHA        string
	Base           string
	MergeCommitSHA string
	MergedAt       string // RFC 3339, empty for unmerged pull requests
	State          string
}

// NewSampleCommit creates a github.RepositoryCommit from sample data
func NewSampleCommit(data SampleCommitData) *github.RepositoryCommit {
	date := parseTime(data.Date, DefaultCommitDate)
	rc := &github.RepositoryCommit{
		SHA: github.String(data.SHA),
		Commit: &github.Commit{
			Message:   github.String(data.Message),
			Author:    &github.CommitAuthor{Name: github.String(data.Name), Date: &github.Timestamp{Time: date}},
			Committer: &github.CommitAuthor{Name: github.String(data.Name), Date: &github.Timestamp{Time: date}},
		},
	}
	if data.Login != "" {
		rc.Author = &github.User{Login: github.String(data.Login)}
	}
	for _, parent := range data.Parents {
		rc.Parents = append(rc.Parents, &github.Commit{SHA: github.String(parent)})
	}
	return rc
}

// NewSampleCommits converts a list of sample commits, keeping order
func NewSampleCommits(data ...SampleCommitData) []*github.RepositoryCommit {
	commits := make([]*github.RepositoryCommit, 0, len(data))
	for _, d := range data {
		commits = append(commits, NewSampleCommit(d))
	}
	return commits
}

// NewSamplePullRequest creates a github.PullRequest from sample data
func NewSamplePullRequest(data SamplePRData) *github.PullRequest {
	state := data.State
	if state == "" {
		state = "open"
		if data.MergedAt != "" {
			state = "closed"
		}
	}

	pr := &github.PullRequest{
		Number:  github.Int(data.Number),
		Title:   github.String(data.Title),
		Body:    github.String(data.Body),
		User:    &github.User{Login: github.String(data.Author)},
		Head:    &github.PullRequestBranch{Ref: github.String(data.Head), SHA: github.String(data.HeadSHA)},
		Base:    &github.PullRequestBranch{Ref: github.String(data.Base)},
		HTMLURL: github.String(fmt.Sprintf("https://github.com/owner/repo/pull/%d", data.Number)),
		State:   github.String(state),
	}
	if data.MergeCommitSHA != "" {
		pr.MergeCommitSHA = github.String(data.MergeCommitSHA)
	}
	if data.MergedAt != "" {
		pr.MergedAt = &github.Timestamp{Time: parseTime(data.MergedAt, "")}
	}
	return pr
}

// DefaultPRData returns a default merged PR for testing
func DefaultPRData() SamplePRData {
	return SamplePRData{
		Number:   123,
		Title:    "Test Pull Request",
		Body:     "This is a test pull request",
		Author:   "octocat",
		Head:     "feature-branch",
		HeadSHA:  "feature-sha",
		Base:     "develop",
		MergedAt: "2017-01-08T21:56:36+09:00",
	}
}

// MergedPRData returns PR data for a pull request merged into base
func MergedPRData(number int, headSHA, mergedAt string) SamplePRData {
	data := DefaultPRData()
	data.Number = number
	data.Title = fmt.Sprintf("Pull request %d", number)
	data.Head = fmt.Sprintf("feature-%d", number)
	data.HeadSHA = headSHA
	data.MergedAt = mergedAt
	return data
}

// ClosedPRData returns PR data for a pull request closed without merging
func ClosedPRData(number int, headSHA string) SamplePRData {
	data := MergedPRData(number, headSHA, "")
	data.State = "closed"
	return data
}

func parseTime(value, fallback string) time.Time {
	if value == "" {
		value = fallback
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(fmt.Sprintf("testhelpers: bad time %q: %v", value, err))
	}
	return t
}

// NewSampleComparison creates a compare result with the given base and merge base commits
func NewSampleComparison(baseSHA, mergeBaseSHA string) *github.CommitsComparison {
	return &github.CommitsComparison{
		BaseCommit:      &github.RepositoryCommit{SHA: github.String(baseSHA)},
		MergeBaseCommit: &github.RepositoryCommit{SHA: github.String(mergeBaseSHA)},
		Status:          github.String("ahead"),
	}
}
