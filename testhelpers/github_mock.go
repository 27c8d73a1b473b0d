package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// GraphQLHandler answers a GraphQL request with a data payload or error messages
type GraphQLHandler func(query string, variables map[string]interface{}) (interface{}, []string)

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
// The same fixtures back both the REST endpoints and the GraphQL endpoint.
type MockGitHubServerConfig struct {
	Owner string
	Repo  string

	// PRs maps pull request numbers to their data for GET /pulls/{number}
	PRs map[int]*github.PullRequest
	// PRList is served by GET /pulls, already in most-recently-updated order
	PRList []*github.PullRequest
	// PRCommits maps pull request numbers to their commits, oldest first
	PRCommits map[int][]*github.RepositoryCommit
	// RefCommits maps ref names to their history, newest first
	RefCommits map[string][]*github.RepositoryCommit
	// Comparisons maps "base...head" to compare results
	Comparisons map[string]*github.CommitsComparison
	// PageSize overrides the per_page requested by the client when set
	PageSize int
	// ErrorResponses maps "METHOD path" to a status code to fail with
	ErrorResponses map[string]int
	// GraphQL replaces the fixture-backed GraphQL responder when set
	GraphQL GraphQLHandler

	// CreatedPRs stores PRs that were created
	CreatedPRs []*github.PullRequest
	// UpdatedPRs stores PRs that were updated
	UpdatedPRs map[int]*github.PullRequest

	mu       sync.Mutex
	requests map[string]int
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:          "owner",
		Repo:           "repo",
		PRs:            make(map[int]*github.PullRequest),
		PRCommits:      make(map[int][]*github.RepositoryCommit),
		RefCommits:     make(map[string][]*github.RepositoryCommit),
		Comparisons:    make(map[string]*github.CommitsComparison),
		ErrorResponses: make(map[string]int),
		UpdatedPRs:     make(map[int]*github.PullRequest),
		requests:       make(map[string]int),
	}
}

// AddPullRequest registers a pull request for lookups and appends it to PRList
func (c *MockGitHubServerConfig) AddPullRequest(pr *github.PullRequest) {
	c.PRs[pr.GetNumber()] = pr
	c.PRList = append(c.PRList, pr)
}

// Requests returns how many requests were received for "METHOD path"
func (c *MockGitHubServerConfig) Requests(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[key]
}

// PullsPath returns the pull request list path for the configured repository
func (c *MockGitHubServerConfig) PullsPath() string {
	return "/repos/" + c.Owner + "/" + c.Repo + "/pulls"
}

// NewMockGitHubServer creates an httptest server that mocks GitHub API endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	if config.requests == nil {
		config.requests = make(map[string]int)
	}

	m := &mockGitHub{config: config}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/pulls", m.listPullRequests)
	mux.HandleFunc("POST /repos/{owner}/{repo}/pulls", m.createPullRequest)
	mux.HandleFunc("GET /repos/{owner}/{repo}/pulls/{number}", m.getPullRequest)
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/pulls/{number}", m.updatePullRequest)
	mux.HandleFunc("GET /repos/{owner}/{repo}/pulls/{number}/commits", m.listPullRequestCommits)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits", m.listCommits)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{ref...}", m.getCommit)
	mux.HandleFunc("GET /repos/{owner}/{repo}/compare/{basehead...}", m.compare)
	mux.HandleFunc("POST /graphql", m.graphql)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		config.mu.Lock()
		config.requests[key]++
		status, fail := config.ErrorResponses[key]
		config.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}

type mockGitHub struct {
	config *MockGitHubServerConfig
}

func (m *mockGitHub) listPullRequests(w http.ResponseWriter, r *http.Request) {
	cfg := m.config
	query := r.URL.Query()

	cfg.mu.Lock()
	var matched []*github.PullRequest
	if head := query.Get("head"); head != "" {
		_, branch, _ := strings.Cut(head, ":")
		for _, pr := range allPullRequests(cfg) {
			if pr.GetHead().GetRef() == branch && pr.GetState() == "open" && baseMatches(pr, query.Get("base")) {
				matched = append(matched, pr)
			}
		}
	} else {
		state := query.Get("state")
		for _, pr := range cfg.PRList {
			if (state == "" || state == "all" || pr.GetState() == state) && baseMatches(pr, query.Get("base")) {
				matched = append(matched, pr)
			}
		}
	}
	cfg.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(w, r, matched, cfg.PageSize))
}

func (m *mockGitHub) createPullRequest(w http.ResponseWriter, r *http.Request) {
	var newPR github.NewPullRequest
	if err := json.NewDecoder(r.Body).Decode(&newPR); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := m.config
	cfg.mu.Lock()
	number := 1000 + len(cfg.CreatedPRs) + 1
	pr := &github.PullRequest{
		Number:  github.Int(number),
		Title:   newPR.Title,
		Body:    newPR.Body,
		Head:    &github.PullRequestBranch{Ref: newPR.Head},
		Base:    &github.PullRequestBranch{Ref: newPR.Base},
		Draft:   newPR.Draft,
		State:   github.String("open"),
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", cfg.Owner, cfg.Repo, number)),
	}
	cfg.CreatedPRs = append(cfg.CreatedPRs, pr)
	cfg.mu.Unlock()

	writeJSON(w, http.StatusCreated, pr)
}

func (m *mockGitHub) getPullRequest(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		http.Error(w, "Invalid PR number", http.StatusBadRequest)
		return
	}

	cfg := m.config
	cfg.mu.Lock()
	pr := findPullRequest(cfg, number)
	cfg.mu.Unlock()

	if pr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (m *mockGitHub) updatePullRequest(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		http.Error(w, "Invalid PR number", http.StatusBadRequest)
		return
	}

	// The API sends simple fields like {"base": "branch-name"}
	var update struct {
		Title *string `json:"title,omitempty"`
		Body  *string `json:"body,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := m.config
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	existing := findPullRequest(cfg, number)
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	pr := *existing
	if update.Title != nil {
		pr.Title = update.Title
	}
	if update.Body != nil {
		pr.Body = update.Body
	}
	cfg.UpdatedPRs[number] = &pr

	writeJSON(w, http.StatusOK, &pr)
}

func (m *mockGitHub) listPullRequestCommits(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		http.Error(w, "Invalid PR number", http.StatusBadRequest)
		return
	}

	cfg := m.config
	cfg.mu.Lock()
	commits, ok := cfg.PRCommits[number]
	cfg.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, paginate(w, r, commits, cfg.PageSize))
}

func (m *mockGitHub) listCommits(w http.ResponseWriter, r *http.Request) {
	cfg := m.config
	ref := r.URL.Query().Get("sha")

	cfg.mu.Lock()
	commits, ok := cfg.RefCommits[ref]
	cfg.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No commit found for SHA: " + ref})
		return
	}
	writeJSON(w, http.StatusOK, paginate(w, r, commits, cfg.PageSize))
}

func (m *mockGitHub) getCommit(w http.ResponseWriter, r *http.Request) {
	cfg := m.config
	ref := r.PathValue("ref")

	cfg.mu.Lock()
	commit := resolveRef(cfg, ref)
	cfg.mu.Unlock()

	if commit == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "No commit found for SHA: " + ref})
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "sha") {
		w.Header().Set("Content-Type", "application/vnd.github.sha")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(commit.GetSHA()))
		return
	}
	writeJSON(w, http.StatusOK, commit)
}

func (m *mockGitHub) compare(w http.ResponseWriter, r *http.Request) {
	cfg := m.config
	basehead := r.PathValue("basehead")

	cfg.mu.Lock()
	cmp, ok := cfg.Comparisons[basehead]
	cfg.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// paginate slices items according to the page and per_page query parameters
// and sets a Link header when more pages remain.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T, pageSize int) []T {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	size := pageSize
	if size <= 0 {
		size, _ = strconv.Atoi(query.Get("per_page"))
	}
	if size <= 0 {
		size = 30
	}

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	} else if end < len(items) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
	}
	return items[start:end]
}

func allPullRequests(cfg *MockGitHubServerConfig) []*github.PullRequest {
	prs := make([]*github.PullRequest, 0, len(cfg.PRs)+len(cfg.CreatedPRs))
	for _, pr := range cfg.PRs {
		prs = append(prs, pr)
	}
	return append(prs, cfg.CreatedPRs...)
}

func findPullRequest(cfg *MockGitHubServerConfig, number int) *github.PullRequest {
	if pr, ok := cfg.UpdatedPRs[number]; ok {
		return pr
	}
	if pr, ok := cfg.PRs[number]; ok {
		return pr
	}
	for _, pr := range cfg.CreatedPRs {
		if pr.GetNumber() == number {
			return pr
		}
	}
	return nil
}

func baseMatches(pr *github.PullRequest, base string) bool {
	return base == "" || pr.GetBase().GetRef() == base
}

// resolveRef finds the commit a ref or SHA points at
func resolveRef(cfg *MockGitHubServerConfig, ref string) *github.RepositoryCommit {
	if commits, ok := cfg.RefCommits[ref]; ok && len(commits) > 0 {
		return commits[0]
	}
	for _, commits := range cfg.RefCommits {
		for _, c := range commits {
			if c.GetSHA() == ref {
				return c
			}
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
