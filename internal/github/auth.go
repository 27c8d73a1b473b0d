package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultHostname is the public GitHub host
const DefaultHostname = "github.com"

// Endpoints holds the API base URLs for a GitHub host.
type Endpoints struct {
	REST    *url.URL
	Upload  *url.URL
	GraphQL string
}

// EndpointsFor returns the API endpoints for hostname. github.com uses the
// public API hosts; GitHub Enterprise serves REST under /api/v3/, uploads under
// /api/uploads/ and GraphQL at /api/graphql.
func EndpointsFor(hostname string) (Endpoints, error) {
	if hostname == "" || hostname == DefaultHostname {
		rest, _ := url.Parse("https://api.github.com/")
		upload, _ := url.Parse("https://uploads.github.com/")
		return Endpoints{REST: rest, Upload: upload, GraphQL: "https://api.github.com/graphql"}, nil
	}

	rest, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
	}
	upload, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
	}
	return Endpoints{REST: rest, Upload: upload, GraphQL: fmt.Sprintf("https://%s/api/graphql", hostname)}, nil
}

// NewHTTPClient returns an http.Client that authenticates every request with token.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(ctx, ts)
}

// NewClient builds the Client for the requested flavor against hostname.
func NewClient(ctx context.Context, flavor Flavor, hostname, token string) (Client, error) {
	endpoints, err := EndpointsFor(hostname)
	if err != nil {
		return nil, err
	}
	httpClient := NewHTTPClient(ctx, token)

	rest := NewRESTClient(httpClient, endpoints)
	if flavor == FlavorGraphQL {
		return NewGraphQLClient(httpClient, endpoints.GraphQL, rest), nil
	}
	return rest, nil
}

// GetToken gets a GitHub token from the environment or the gh CLI
func GetToken(ctx context.Context) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("GITHUB_TOKEN is not set and gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}

	return token, nil
}
