package github

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client wraps both the REST API client (go-github) and GraphQL client (githubv4)
type Client struct {
	REST    *github.Client
	GraphQL *githubv4.Client
}

// Options tunes the HTTP side of a Client.
type Options struct {
	// GraphQLEndpoint overrides https://api.github.com/graphql, e.g. for GitHub Enterprise.
	GraphQLEndpoint string
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
}

// NewClient creates a new GitHub client with both REST and GraphQL capabilities
func NewClient(token string) *Client {
	return NewClientWithOptions(token, Options{})
}

// NewClientWithOptions is NewClient with a custom endpoint and timeout.
func NewClientWithOptions(token string, opts Options) *Client {
	var httpClient *http.Client

	if token != "" {
		// Create an OAuth2 token source
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = opts.Timeout

	gql := githubv4.NewClient(httpClient)
	if opts.GraphQLEndpoint != "" {
		gql = githubv4.NewEnterpriseClient(opts.GraphQLEndpoint, httpClient)
	}

	return &Client{
		REST:    github.NewClient(httpClient),
		GraphQL: gql,
	}
}

// GetAuthenticatedUser returns information about the authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, _, err := c.REST.Users.Get(ctx, "")
	if err != nil {
		return nil, mapError(err, "authenticated user")
	}
	return user, nil
}
