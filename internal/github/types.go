package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the GitHub API answers 404
var ErrNotFound = errors.New("not found")

// APIError is a non-successful GitHub API response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: %d %s", e.StatusCode, e.Body)
}

// Release represents a GitHub release
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedAt time.Time `json:"published_at"`
}

// ReleasesResponse represents the response from GitHub API
type ReleasesResponse struct {
	StatusCode int
	ETag       string
	Releases   []Release
}

// User is the author of a pull request
type User struct {
	Login string `json:"login"`
}

// Label is a label attached to a pull request
type Label struct {
	Name string `json:"name"`
}

// PullRequest represents a GitHub pull request
type PullRequest struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	State    string     `json:"state"`
	HTMLURL  string     `json:"html_url"`
	MergedAt *time.Time `json:"merged_at"`
	User     User       `json:"user"`
	Labels   []Label    `json:"labels"`
}
