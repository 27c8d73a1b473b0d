package testhelpers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
)

func (m *mockGitHub) graphql(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler := m.config.GraphQL
	if handler == nil {
		handler = m.fixtureGraphQL
	}
	data, errs := handler(req.Query, req.Variables)

	resp := map[string]interface{}{"data": data}
	if len(errs) > 0 {
		list := make([]map[string]string, 0, len(errs))
		for _, msg := range errs {
			list = append(list, map[string]string{"message": msg})
		}
		resp["errors"] = list
	}
	writeJSON(w, http.StatusOK, resp)
}

// fixtureGraphQL serves the paged queries from the same fixtures as REST.
// Cursors are stringified offsets.
func (m *mockGitHub) fixtureGraphQL(query string, vars map[string]interface{}) (interface{}, []string) {
	cfg := m.config
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	first := intVar(vars, "perPage")
	if cfg.PageSize > 0 {
		first = cfg.PageSize
	}
	offset := 0
	if after, ok := vars["after"].(string); ok {
		offset, _ = strconv.Atoi(after)
	}

	switch {
	case strings.Contains(query, "pullRequests("):
		base, _ := vars["base"].(string)
		var merged []*github.PullRequest
		for _, pr := range cfg.PRList {
			if pr.MergedAt != nil && baseMatches(pr, base) {
				merged = append(merged, pr)
			}
		}
		window, info := graphQLWindow(merged, offset, first)
		nodes := make([]interface{}, 0, len(window))
		for _, pr := range window {
			nodes = append(nodes, graphQLPullRequestNode(pr))
		}
		return repositoryData(map[string]interface{}{
			"pullRequests": map[string]interface{}{"nodes": nodes, "pageInfo": info},
		}), nil

	case strings.Contains(query, "history("):
		ref, _ := vars["ref"].(string)
		commits, ok := cfg.RefCommits[ref]
		if !ok {
			return repositoryData(map[string]interface{}{"ref": nil}), nil
		}
		window, info := graphQLWindow(commits, offset, first)
		nodes := make([]interface{}, 0, len(window))
		for _, c := range window {
			nodes = append(nodes, graphQLCommitNode(c))
		}
		var tip string
		if len(commits) > 0 {
			tip = commits[0].GetSHA()
		}
		return repositoryData(map[string]interface{}{
			"ref": map[string]interface{}{
				"target": map[string]interface{}{
					"oid":     tip,
					"history": map[string]interface{}{"nodes": nodes, "pageInfo": info},
				},
			},
		}), nil

	case strings.Contains(query, "commits("):
		number := intVar(vars, "number")
		pr := findPullRequest(cfg, number)
		commits, ok := cfg.PRCommits[number]
		if pr == nil || !ok {
			return nil, []string{"Could not resolve to a PullRequest with the number of " + strconv.Itoa(number) + "."}
		}
		window, info := graphQLWindow(commits, offset, first)
		nodes := make([]interface{}, 0, len(window))
		for _, c := range window {
			nodes = append(nodes, map[string]interface{}{"commit": graphQLCommitNode(c)})
		}
		return repositoryData(map[string]interface{}{
			"pullRequest": map[string]interface{}{
				"headRefName": pr.GetHead().GetRef(),
				"headRefOid":  pr.GetHead().GetSHA(),
				"baseRefName": pr.GetBase().GetRef(),
				"baseRefOid":  pr.GetBase().GetSHA(),
				"commits":     map[string]interface{}{"nodes": nodes, "pageInfo": info},
			},
		}), nil
	}

	return nil, []string{"unsupported query"}
}

// graphQLCommitNode renders a commit the way the commit queries select it
func graphQLCommitNode(c *github.RepositoryCommit) map[string]interface{} {
	var user interface{}
	if login := c.GetAuthor().GetLogin(); login != "" {
		user = map[string]interface{}{"login": login}
	}
	parents := make([]interface{}, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, map[string]interface{}{"oid": p.GetSHA()})
	}
	return map[string]interface{}{
		"oid":           c.GetSHA(),
		"message":       c.GetCommit().GetMessage(),
		"committedDate": c.GetCommit().GetCommitter().GetDate().Format(time.RFC3339),
		"author": map[string]interface{}{
			"name": c.GetCommit().GetAuthor().GetName(),
			"user": user,
		},
		"parents": map[string]interface{}{"nodes": parents},
	}
}

// graphQLPullRequestNode renders a pull request the way the list query selects it
func graphQLPullRequestNode(pr *github.PullRequest) map[string]interface{} {
	node := map[string]interface{}{
		"number":      pr.GetNumber(),
		"title":       pr.GetTitle(),
		"body":        pr.GetBody(),
		"url":         pr.GetHTMLURL(),
		"state":       strings.ToUpper(pr.GetState()),
		"mergedAt":    nil,
		"headRefName": pr.GetHead().GetRef(),
		"headRefOid":  pr.GetHead().GetSHA(),
		"baseRefName": pr.GetBase().GetRef(),
		"mergeCommit": nil,
		"author":      map[string]interface{}{"login": pr.GetUser().GetLogin()},
	}
	if pr.MergedAt != nil {
		node["state"] = "MERGED"
		node["mergedAt"] = pr.MergedAt.Format(time.RFC3339)
	}
	if sha := pr.GetMergeCommitSHA(); sha != "" {
		node["mergeCommit"] = map[string]interface{}{"oid": sha}
	}
	return node
}

func graphQLWindow[T any](items []T, offset, first int) ([]T, map[string]interface{}) {
	if first <= 0 {
		first = 100
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + first
	if end > len(items) {
		end = len(items)
	}
	info := map[string]interface{}{
		"hasNextPage": end < len(items),
		"endCursor":   strconv.Itoa(end),
	}
	return items[offset:end], info
}

func repositoryData(repository map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"repository": repository}
}

func intVar(vars map[string]interface{}, name string) int {
	switch v := vars[name].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
