package testhelpers

import (
	"net/http"
	"net/url"
	"testing"

	githubpkg "prsummary.dev/prsummary/internal/github"
)

// NewMockRESTClient creates a REST flavored client talking to a mock server
func NewMockRESTClient(t *testing.T, config *MockGitHubServerConfig) *githubpkg.RESTClient {
	t.Helper()
	client, _, _ := NewMockGitHubClient(t, config)
	return githubpkg.WrapRESTClient(client)
}

// NewMockGraphQLClient creates a GraphQL flavored client talking to a mock
// server. Non-paged calls go to the REST endpoints of the same server.
func NewMockGraphQLClient(t *testing.T, config *MockGitHubServerConfig) *githubpkg.GraphQLClient {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	base, _ := url.Parse(server.URL + "/")
	rest := githubpkg.NewRESTClient(http.DefaultClient, githubpkg.Endpoints{REST: base, Upload: base})
	return githubpkg.NewGraphQLClient(http.DefaultClient, server.URL+"/graphql", rest)
}

// NewMockClients returns one client per flavor, each backed by its own server
// over the same fixtures.
func NewMockClients(t *testing.T, config *MockGitHubServerConfig) map[string]githubpkg.Client {
	t.Helper()
	return map[string]githubpkg.Client{
		"rest":    NewMockRESTClient(t, config),
		"graphql": NewMockGraphQLClient(t, config),
	}
}
