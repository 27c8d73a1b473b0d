// Package model holds the read-only projections of forge state that flow through
// a resolution: commits, pull requests and the release interval they belong to.
//
// These types are deliberately decoupled from go-github and githubv4 so the
// resolver can be driven by either transport, or by a local clone.
package model

import (
	"errors"
	"strings"
	"time"

	prerrors "prsummary.dev/prsummary/internal/errors"
)

// Pull request states after normalisation by the transport.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

// Commit is a single commit as reported by the forge or a local clone.
type Commit struct {
	SHA         string
	Parents     []string
	AuthorLogin string // platform login, empty when the author email is not linked to an account
	AuthorName  string // free-text name from the commit itself
	Message     string
	CommittedAt time.Time
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(subject)
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Contributor returns the identity to credit for this commit: the platform login
// when known, otherwise the commit author name. ok is false when both are blank.
func (c Commit) Contributor() (string, bool) {
	if login := strings.TrimSpace(c.AuthorLogin); login != "" {
		return login, true
	}
	if name := strings.TrimSpace(c.AuthorName); name != "" {
		return name, true
	}
	return "", false
}

// PullRequest is a pull request candidate for correlation.
type PullRequest struct {
	Number         int
	Title          string
	Body           string
	AuthorLogin    string
	HeadRef        string
	HeadSHA        string
	MergeCommitSHA string
	MergedAt       *time.Time
	State          string
	BaseRef        string
	HTMLURL        string
}

// IsMerged reports whether the pull request is eligible for correlation.
func (pr PullRequest) IsMerged() bool {
	return pr.State == StateMerged
}

// NormalizeState maps a forge state onto open/closed/merged. A merge timestamp
// always wins, since REST reports merged pull requests as "closed".
func NormalizeState(state string, mergedAt *time.Time) string {
	if mergedAt != nil && !mergedAt.IsZero() {
		return StateMerged
	}
	switch strings.ToLower(state) {
	case StateMerged:
		return StateMerged
	case StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}

// RefTip is a named ref and the commit it pointed at when fetched.
type RefTip struct {
	Name string
	SHA  string
}

// ReleaseInterval identifies the slice of history a summary covers.
type ReleaseInterval struct {
	Owner        string
	Repo         string
	BaseRef      string
	HeadRef      string
	HeadSHA      string
	MergeBaseSHA string
}

// Summary is the structured result handed to the renderer.
type Summary struct {
	Interval     ReleaseInterval
	Commits      []Commit
	Contributors []string
	PullRequests []PullRequest
	// Warnings are non-fatal conditions; the summary is still usable.
	Warnings []error
}

// Incomplete reports whether the pull request list may be missing entries
// because the candidate scan hit its ceiling.
func (s Summary) Incomplete() bool {
	for _, w := range s.Warnings {
		if errors.Is(w, prerrors.ErrRangeExhausted) {
			return true
		}
	}
	return false
}

// CommitWindow is a slice of history fetched around a release: the commits
// reachable from Head, newest first, down to at least MergeBase unless
// Truncated is set.
type CommitWindow struct {
	Head      RefTip
	Base      RefTip
	MergeBase string
	Commits   []Commit
	Truncated bool
}
