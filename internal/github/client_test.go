package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("secret", append([]Option{WithBaseURL(srv.URL)}, opts...)...)
}

func TestGetReleaseByTag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widget/releases/tags/v1.2.0" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		fmt.Fprint(w, `{"id": 7, "tag_name": "v1.2.0", "created_at": "2024-03-01T00:00:00Z"}`)
	})

	release, err := c.GetReleaseByTag(context.Background(), "acme", "widget", "v1.2.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if release.TagName != "v1.2.0" || release.ID != 7 {
		t.Fatalf("unexpected release: %+v", release)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !release.CreatedAt.Equal(want) {
		t.Fatalf("unexpected created_at: %v", release.CreatedAt)
	}
}

func TestGetReleaseByTagNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	_, err := c.GetReleaseByTag(context.Background(), "acme", "widget", "v0.0.0")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReleaseByTagUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := c.GetReleaseByTag(context.Background(), "acme", "widget", "v1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("401 must not be reported as not found")
	}
}

func TestListReleases(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("unexpected per_page %q", got)
		}
		w.Header().Set("ETag", `"abc"`)
		fmt.Fprint(w, `[{"tag_name": "v2"}, {"tag_name": "v1"}]`)
	})

	resp, err := c.ListReleases(context.Background(), "acme", "widget", 500, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ETag != `"abc"` {
		t.Fatalf("unexpected etag %q", resp.ETag)
	}
	if len(resp.Releases) != 2 || resp.Releases[0].TagName != "v2" {
		t.Fatalf("unexpected releases: %+v", resp.Releases)
	}
}

func TestListReleasesNotModified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != `"abc"` {
			t.Errorf("missing If-None-Match header")
		}
		w.WriteHeader(http.StatusNotModified)
	})

	resp, err := c.ListReleases(context.Background(), "acme", "widget", 5, `"abc"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotModified || resp.Releases != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestListClosedPullRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != "closed" || q.Get("sort") != "updated" || q.Get("direction") != "desc" || q.Get("per_page") != "100" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[
			{"number": 2, "title": "Add thing", "merged_at": "2024-02-15T00:00:00Z", "user": {"login": "alice"}, "labels": [{"name": "feature"}]},
			{"number": 1, "title": "Rejected", "merged_at": null, "user": {"login": "bob"}, "labels": []}
		]`)
	})

	prs, err := c.ListClosedPullRequests(context.Background(), "acme", "widget", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("expected 2 pull requests, got %d", len(prs))
	}
	if prs[0].MergedAt == nil || prs[0].User.Login != "alice" || prs[0].Labels[0].Name != "feature" {
		t.Fatalf("unexpected first pull request: %+v", prs[0])
	}
	if prs[1].MergedAt != nil {
		t.Fatalf("expected unmerged pull request")
	}
}

func TestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListClosedPullRequests(context.Background(), "acme", "widget", 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[]`)
	}, WithMaxRetries(1))

	prs, err := c.ListClosedPullRequests(context.Background(), "acme", "widget", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prs) != 0 || calls.Load() != 2 {
		t.Fatalf("unexpected result: %d prs after %d calls", len(prs), calls.Load())
	}
}

func TestFilterAndSortReleases(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	releases := []Release{
		{TagName: "v3", PublishedAt: day(3)},
		{TagName: "draft", Draft: true, PublishedAt: day(4)},
		{TagName: "v2-rc", Prerelease: true, PublishedAt: day(2)},
		{TagName: "v1", PublishedAt: day(1)},
		{TagName: "unpublished"},
	}

	got := FilterAndSortReleases(releases, false)
	if len(got) != 2 || got[0].TagName != "v1" || got[1].TagName != "v3" {
		t.Fatalf("unexpected releases: %+v", got)
	}

	got = FilterAndSortReleases(releases, true)
	if len(got) != 3 || got[1].TagName != "v2-rc" {
		t.Fatalf("unexpected releases with prereleases: %+v", got)
	}
}
