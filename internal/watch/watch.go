// Package watch polls tracked repositories for new releases and generates
// release notes for each one exactly once.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/relnotes/internal/config"
	"github.com/yourorg/relnotes/internal/db"
	"github.com/yourorg/relnotes/internal/generator"
	"github.com/yourorg/relnotes/internal/github"
	"github.com/yourorg/relnotes/internal/notes"
)

const (
	defaultBatchSize    = 20
	defaultBatchDelay   = time.Second
	defaultRequestDelay = 200 * time.Millisecond
	releasesPerPage     = 30
)

// ReleaseLister fetches the releases of a repository
type ReleaseLister interface {
	ListReleases(ctx context.Context, owner, repo string, perPage int, etag string) (*github.ReleasesResponse, error)
}

// Store keeps the watch state between runs
type Store interface {
	AddRepository(ctx context.Context, owner, name string, trackPrereleases bool) error
	ListRepositories(ctx context.Context) ([]db.Repository, error)
	GetETag(ctx context.Context, repoOwner, repoName string) (string, error)
	PutETag(ctx context.Context, repoOwner, repoName, etag string) error
	MarkAnnounced(ctx context.Context, repoOwner, repoName string, releaseID int64, tagName string, publishedAt time.Time) error
	IsAnnounced(ctx context.Context, repoOwner, repoName string, releaseID int64) (bool, error)
}

// Generator produces the notes for one release
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Report, error)
}

// Job checks every tracked repository once per Run
type Job struct {
	Releases  ReleaseLister
	Store     Store
	Generator Generator
	Logger    *slog.Logger

	MaxReleaseAge time.Duration // releases published earlier are marked without generating
	BatchSize     int
	BatchDelay    time.Duration
	RequestDelay  time.Duration
	Now           func() time.Time
}

// Run performs one release check. Its signature matches scheduler.Job.
func (j *Job) Run(ctx context.Context) {
	logger := j.logger()
	logger.Info("Starting release check job")

	repos, err := j.Store.ListRepositories(ctx)
	if err != nil {
		logger.Error("Failed to get repositories", "error", err)
		return
	}
	if len(repos) == 0 {
		logger.Info("No repositories to check")
		return
	}

	logger.Info("Checking releases for repositories", "count", len(repos))

	batchSize := j.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for i := 0; i < len(repos); i += batchSize {
		end := min(i+batchSize, len(repos))
		j.processBatch(ctx, repos[i:end])

		if end < len(repos) && !sleep(ctx, j.delay(j.BatchDelay, defaultBatchDelay)) {
			logger.Info("Release check interrupted")
			return
		}
	}

	logger.Info("Release check job completed")
}

func (j *Job) processBatch(ctx context.Context, repos []db.Repository) {
	for i, repo := range repos {
		if i > 0 && !sleep(ctx, j.delay(j.RequestDelay, defaultRequestDelay)) {
			return
		}
		j.processRepository(ctx, repo)
	}
}

func (j *Job) processRepository(ctx context.Context, repo db.Repository) {
	logger := j.logger().With("repo", repo.Owner+"/"+repo.Name)

	etag, err := j.Store.GetETag(ctx, repo.Owner, repo.Name)
	if err != nil {
		logger.Warn("Failed to get ETag", "error", err)
	}

	resp, err := j.Releases.ListReleases(ctx, repo.Owner, repo.Name, releasesPerPage, etag)
	if err != nil {
		logger.Error("Failed to fetch releases", "error", err)
		return
	}

	if resp.StatusCode == http.StatusNotModified {
		logger.Debug("No new releases (304 Not Modified)")
		return
	}

	releases := github.FilterAndSortReleases(resp.Releases, repo.TrackPrereleases)
	logger.Debug("Processed releases", "total", len(resp.Releases), "filtered", len(releases))

	complete := true
	for _, release := range releases {
		if !j.processRelease(ctx, logger, repo, release) {
			complete = false
		}
	}

	// Keep the old ETag when a release failed so the next run sees it again
	if complete && resp.ETag != "" {
		if err := j.Store.PutETag(ctx, repo.Owner, repo.Name, resp.ETag); err != nil {
			logger.Warn("Failed to store ETag", "error", err)
		}
	}
}

// processRelease reports false when the release should be retried later
func (j *Job) processRelease(ctx context.Context, logger *slog.Logger, repo db.Repository, release github.Release) bool {
	logger = logger.With("release_id", release.ID, "tag", release.TagName)

	announced, err := j.Store.IsAnnounced(ctx, repo.Owner, repo.Name, release.ID)
	if err != nil {
		logger.Error("Failed to check if release is announced", "error", err)
		return false
	}
	if announced {
		logger.Debug("Release already announced, skipping")
		return true
	}

	if j.MaxReleaseAge > 0 && release.PublishedAt.Before(j.now().Add(-j.MaxReleaseAge)) {
		logger.Debug("Skipping old release", "published_at", release.PublishedAt)
		j.markAnnounced(ctx, logger, repo, release)
		return true
	}

	logger.Info("Processing new release")

	_, err = j.Generator.Generate(ctx, generator.Request{
		Owner:     repo.Owner,
		Repo:      repo.Name,
		EndTag:    release.TagName,
		Announce:  true,
		URL:       release.HTMLURL,
		Published: release.PublishedAt,
	})
	if err != nil {
		var tagErr *notes.TagNotFoundError
		if errors.As(err, &tagErr) {
			// The release vanished between listing and lookup
			logger.Warn("Release tag not found, marking as announced", "error", err)
			j.markAnnounced(ctx, logger, repo, release)
			return true
		}
		logger.Error("Failed to generate release notes", "error", err)
		return false
	}

	j.markAnnounced(ctx, logger, repo, release)
	return true
}

func (j *Job) markAnnounced(ctx context.Context, logger *slog.Logger, repo db.Repository, release github.Release) {
	if err := j.Store.MarkAnnounced(ctx, repo.Owner, repo.Name, release.ID, release.TagName, release.PublishedAt); err != nil {
		logger.Error("Failed to mark release as announced", "error", err)
		return
	}
	logger.Debug("Release marked as announced")
}

func (j *Job) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *Job) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *Job) delay(d, def time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d == 0 {
		return def
	}
	return d
}

// SeedRepositories adds the configured repositories to the store.
// Failures are logged; repositories can still be added through the bot.
func SeedRepositories(ctx context.Context, logger *slog.Logger, store Store, specs []config.RepoSpec) {
	if len(specs) == 0 {
		logger.Debug("No initial repositories configured")
		return
	}

	logger.Info("Initializing repositories from configuration", "count", len(specs))

	for _, spec := range specs {
		repoLogger := logger.With("repo", spec.String())
		if err := store.AddRepository(ctx, spec.Owner, spec.Name, spec.TrackPrereleases); err != nil {
			repoLogger.Warn("Failed to add repository from configuration", "error", err)
			continue
		}
		repoLogger.Info("Repository added from configuration", "prereleases", spec.TrackPrereleases)
	}
}

// sleep waits for d and reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
