package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Sentinel errors returned (wrapped) by the client.
var (
	// ErrUnauthorized indicates GitHub rejected the token.
	ErrUnauthorized = errors.New("github authentication failed")

	// ErrRateLimit indicates the API rate limit has been exceeded.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrProjectNotFound indicates the owner or project could not be resolved,
	// or the response carried no projectV2 object.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNetwork indicates the request never got a response.
	ErrNetwork = errors.New("network connection failed")

	// ErrGraphQL indicates the response carried a GraphQL errors list.
	ErrGraphQL = errors.New("graphql query failed")

	// ErrBadResponse indicates a non-200 status or a body that could not be decoded.
	ErrBadResponse = errors.New("unexpected response from github")
)

// mapError maps raw client errors to sentinel errors with actionable messages.
// The original error text is kept in the message for diagnostics.
func mapError(err error, target string) error {
	if err == nil {
		return nil
	}

	// Transport failures first: their messages embed the URL, whose port may
	// look like a status code. Then rate limit, as 403 can be both auth and rate limit.
	switch {
	case isNetworkError(err):
		return fmt.Errorf("network error fetching %s (%v): %w", target, err, ErrNetwork)
	case isRateLimitError(err):
		return fmt.Errorf("GitHub API rate limit exceeded while fetching %s, wait before retrying (%v): %w", target, err, ErrRateLimit)
	case isAuthError(err):
		return fmt.Errorf("GitHub API authentication failed while fetching %s, check github_token (%v): %w", target, err, ErrUnauthorized)
	case isNotFoundError(err):
		return fmt.Errorf("%s not found, check owner, project number and token scopes (%v): %w", target, err, ErrProjectNotFound)
	case isBadResponse(err):
		return fmt.Errorf("bad response fetching %s (%v): %w", target, err, ErrBadResponse)
	}
	return fmt.Errorf("GraphQL error fetching %s: %v: %w", target, err, ErrGraphQL)
}

func isAuthError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "bad credentials")
}

func isNotFoundError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "could not resolve to")
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429")
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp")
}

func isBadResponse(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "non-200 ok status code") ||
		strings.Contains(errStr, "unexpected eof")
}
