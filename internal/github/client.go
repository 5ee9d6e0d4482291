package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const maxPerPage = 100

// Client provides GitHub API functionality
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	userAgent  string
	maxRetries int
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxRetries retries 429 and 5xx answers up to n times. The default is 0.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// New creates a new GitHub client
func New(token string, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   "https://api.github.com",
		token:     token,
		userAgent: "relnotes/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetReleaseByTag fetches the release published for tag.
// It returns an error wrapping ErrNotFound when no release matches.
func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repo, url.PathEscape(tag))
	resp, err := c.get(ctx, u, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("release %s: %w", tag, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &release, nil
}

// ListReleases fetches the first page of releases, most recent first, with ETag support
func (c *Client) ListReleases(ctx context.Context, owner, repo string, perPage int, etag string) (*ReleasesResponse, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, owner, repo, clampPerPage(perPage))
	resp, err := c.get(ctx, u, etag)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	response := &ReleasesResponse{
		StatusCode: resp.StatusCode,
		ETag:       resp.Header.Get("ETag"),
	}

	// Handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified {
		return response, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	response.Releases = releases
	return response, nil
}

// ListClosedPullRequests fetches the first page of closed pull requests,
// most recently updated first. Further pages are not requested.
func (c *Client) ListClosedPullRequests(ctx context.Context, owner, repo string, perPage int) ([]PullRequest, error) {
	q := url.Values{}
	q.Set("state", "closed")
	q.Set("sort", "updated")
	q.Set("direction", "desc")
	q.Set("per_page", fmt.Sprint(clampPerPage(perPage)))

	u := fmt.Sprintf("%s/repos/%s/%s/pulls?%s", c.baseURL, owner, repo, q.Encode())
	resp, err := c.get(ctx, u, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var prs []PullRequest
	if err := json.NewDecoder(resp.Body).Decode(&prs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return prs, nil
}

// FilterAndSortReleases filters drafts and sorts releases by published date
func FilterAndSortReleases(releases []Release, trackPrereleases bool) []Release {
	var filtered []Release

	for _, release := range releases {
		if release.Draft {
			continue
		}

		if release.Prerelease && !trackPrereleases {
			continue
		}

		if release.PublishedAt.IsZero() {
			continue
		}

		filtered = append(filtered, release)
	}

	// Oldest first
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.Before(filtered[j].PublishedAt)
	})

	return filtered
}

func (c *Client) get(ctx context.Context, u, etag string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// doWithRetry performs the request, retrying 429 and 5xx answers up to c.maxRetries times
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Success or client error (don't retry)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt == c.maxRetries {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return nil, lastErr
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

func clampPerPage(n int) int {
	if n <= 0 || n > maxPerPage {
		return maxPerPage
	}
	return n
}
