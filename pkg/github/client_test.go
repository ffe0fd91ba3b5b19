package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newRESTClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClientWithOptions("test-token", Options{Timeout: 5 * time.Second})
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("failed to parse server url: %v", err)
	}
	client.REST.BaseURL = base
	return client
}

func TestGetAuthenticatedUser(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login": "octocat", "name": "The Octocat"}`))
	})

	user, err := client.GetAuthenticatedUser(context.Background())
	if err != nil {
		t.Fatalf("GetAuthenticatedUser failed: %v", err)
	}
	if user.GetLogin() != "octocat" || user.GetName() != "The Octocat" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestGetAuthenticatedUser_BadCredentials(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
	})

	_, err := client.GetAuthenticatedUser(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", errors.New("API rate limit exceeded for user"), ErrRateLimit},
		{"auth", errors.New("non-200 OK status code: 401 Unauthorized body: \"\""), ErrUnauthorized},
		{"not found", errors.New("Could not resolve to an Organization with the login of 'nope'."), ErrProjectNotFound},
		{"network", &url.Error{Op: "Post", URL: "http://127.0.0.1:40401/", Err: errors.New("connection refused")}, ErrNetwork},
		{"bad status", errors.New("non-200 OK status code: 500 Internal Server Error body: \"\""), ErrBadResponse},
		{"graphql", errors.New("Field 'foo' doesn't exist on type 'ProjectV2'"), ErrGraphQL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "project #1 of organization acme")
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
	if mapError(nil, "x") != nil {
		t.Error("expected nil for nil error")
	}
}
