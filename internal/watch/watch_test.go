package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourorg/relnotes/internal/config"
	"github.com/yourorg/relnotes/internal/db"
	"github.com/yourorg/relnotes/internal/generator"
	"github.com/yourorg/relnotes/internal/github"
	"github.com/yourorg/relnotes/internal/notes"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeLister struct {
	resp  *github.ReleasesResponse
	err   error
	etags []string
}

func (f *fakeLister) ListReleases(ctx context.Context, owner, repo string, perPage int, etag string) (*github.ReleasesResponse, error) {
	f.etags = append(f.etags, etag)
	return f.resp, f.err
}

type fakeGenerator struct {
	requests []generator.Request
	errs     map[string]error
}

func (f *fakeGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Report, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.EndTag]; err != nil {
		return nil, err
	}
	return &generator.Report{}, nil
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "watch.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return db.NewStore(database)
}

func newJob(store Store, lister ReleaseLister, gen Generator) *Job {
	return &Job{
		Releases:      lister,
		Store:         store,
		Generator:     gen,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxReleaseAge: 30 * 24 * time.Hour,
		BatchDelay:    -1,
		RequestDelay:  -1,
		Now:           func() time.Time { return now },
	}
}

func releases() *github.ReleasesResponse {
	return &github.ReleasesResponse{
		StatusCode: http.StatusOK,
		ETag:       `"abc"`,
		Releases: []github.Release{
			{ID: 3, TagName: "v1.2.0", HTMLURL: "https://example.com/v1.2.0", PublishedAt: now.Add(-24 * time.Hour)},
			{ID: 4, TagName: "v1.3.0-rc1", Prerelease: true, PublishedAt: now.Add(-time.Hour)},
			{ID: 2, TagName: "v1.1.0", PublishedAt: now.Add(-48 * time.Hour)},
			{ID: 1, TagName: "v1.0.0", PublishedAt: now.AddDate(0, -3, 0)},
			{ID: 5, TagName: "draft", Draft: true, PublishedAt: now},
		},
	}
}

func TestRunGeneratesNewReleasesOnce(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.AddRepository(ctx, "acme", "widget", false); err != nil {
		t.Fatal(err)
	}

	lister := &fakeLister{resp: releases()}
	gen := &fakeGenerator{}
	job := newJob(store, lister, gen)

	job.Run(ctx)

	if len(gen.requests) != 2 {
		t.Fatalf("expected two generations, got %+v", gen.requests)
	}
	if gen.requests[0].EndTag != "v1.1.0" || gen.requests[1].EndTag != "v1.2.0" {
		t.Fatalf("releases must be processed oldest first: %+v", gen.requests)
	}
	req := gen.requests[1]
	if !req.Announce || req.StartTag != "" || req.URL != "https://example.com/v1.2.0" {
		t.Fatalf("unexpected request: %+v", req)
	}

	for _, id := range []int64{1, 2, 3} {
		ok, err := store.IsAnnounced(ctx, "acme", "widget", id)
		if err != nil || !ok {
			t.Fatalf("release %d should be marked announced (err %v)", id, err)
		}
	}
	if ok, _ := store.IsAnnounced(ctx, "acme", "widget", 4); ok {
		t.Fatalf("prerelease must not be handled without tracking")
	}
	if etag, _ := store.GetETag(ctx, "acme", "widget"); etag != `"abc"` {
		t.Fatalf("expected stored etag, got %q", etag)
	}

	job.Run(ctx)
	if len(gen.requests) != 2 {
		t.Fatalf("announced releases must not be generated again, got %d", len(gen.requests))
	}
	if lister.etags[1] != `"abc"` {
		t.Fatalf("second run should send the stored etag, got %q", lister.etags[1])
	}
}

func TestRunNotModified(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	store.AddRepository(ctx, "acme", "widget", true)

	gen := &fakeGenerator{}
	job := newJob(store, &fakeLister{resp: &github.ReleasesResponse{StatusCode: http.StatusNotModified}}, gen)
	job.Run(ctx)

	if len(gen.requests) != 0 {
		t.Fatalf("nothing should be generated on 304")
	}
}

func TestRunRetriesFailedReleases(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	store.AddRepository(ctx, "acme", "widget", false)

	gen := &fakeGenerator{errs: map[string]error{
		"v1.1.0": &notes.CollaboratorError{Op: "list closed pull requests", Err: errors.New("timeout")},
		"v1.2.0": &notes.TagNotFoundError{Tag: "v1.2.0", Role: notes.RoleEnd},
	}}
	job := newJob(store, &fakeLister{resp: releases()}, gen)
	job.Run(ctx)

	if ok, _ := store.IsAnnounced(ctx, "acme", "widget", 2); ok {
		t.Fatalf("release with a collaborator failure must be retried")
	}
	if ok, _ := store.IsAnnounced(ctx, "acme", "widget", 3); !ok {
		t.Fatalf("release whose tag is gone should be marked")
	}
	if etag, _ := store.GetETag(ctx, "acme", "widget"); etag != "" {
		t.Fatalf("etag must not be stored after a failure, got %q", etag)
	}
}

func TestRunListingError(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	store.AddRepository(ctx, "acme", "widget", false)

	gen := &fakeGenerator{}
	job := newJob(store, &fakeLister{err: errors.New("boom")}, gen)
	job.Run(ctx)

	if len(gen.requests) != 0 {
		t.Fatalf("unexpected generations: %+v", gen.requests)
	}
}

func TestSeedRepositories(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	SeedRepositories(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), store, []config.RepoSpec{
		{Owner: "acme", Name: "widget"},
		{Owner: "acme", Name: "gadget", TrackPrereleases: true},
	})

	repos, err := store.ListRepositories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected two repositories, got %+v", repos)
	}
}
